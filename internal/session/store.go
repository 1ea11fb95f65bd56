// Persist authentication artifacts (cookie bundles) per account.
// Owned by the auth flow: the scrapers only ever read through it.

package session

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Cookie is the persisted browser cookie shape, independent of the
// automation backend consuming it.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// Artifact is one account's credential bundle.
type Artifact struct {
	CapturedAt time.Time `json:"captured_at"`
	Cookies    []Cookie  `json:"cookies"`
}

// Cookies Upwork always sets on a logged-in session. An artifact
// missing all of them never authenticated properly.
var essentialCookies = []string{"XSRF-TOKEN", "visitor_id", "upwork_ws_access_token"}

type Store struct {
	mu     sync.Mutex
	dir    string
	maxAge time.Duration
	now    func() time.Time
}

func NewStore(dir string, maxAgeDays int) *Store {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("⚠️ Failed to create cookies directory: %v", err)
	}
	return &Store{
		dir:    dir,
		maxAge: time.Duration(maxAgeDays) * 24 * time.Hour,
		now:    time.Now,
	}
}

// Load returns the stored artifact for account, or false when there is
// none worth reusing. Missing, corrupt and stale files all read as
// absent - never as an error.
func (s *Store) Load(account string) (*Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(account))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ Failed to read session file: %v", err)
		}
		return nil, false
	}

	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		log.Printf("⚠️ Corrupt session file, treating as absent: %v", err)
		return nil, false
	}

	if !s.valid(&art) {
		return nil, false
	}
	return &art, true
}

// Save writes the artifact atomically (temp file + rename) so a crash
// mid-write never corrupts the previous session.
func (s *Store) Save(account string, art *Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "session-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path(account))
}

func (s *Store) Invalidate(account string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(account)); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️ Failed to invalidate session: %v", err)
	}
}

func (s *Store) valid(art *Artifact) bool {
	if len(art.Cookies) == 0 {
		return false
	}

	if s.maxAge > 0 && s.now().Sub(art.CapturedAt) > s.maxAge {
		log.Printf("🍪 Session artifact older than %v, ignoring", s.maxAge)
		return false
	}

	hasEssential := false
	nowUnix := float64(s.now().Unix())
	for _, c := range art.Cookies {
		if c.Expires > 0 && c.Expires < nowUnix {
			log.Printf("🍪 Cookie %s expired, session needs refresh", c.Name)
			return false
		}
		for _, name := range essentialCookies {
			if c.Name == name {
				hasEssential = true
			}
		}
	}
	if !hasEssential {
		log.Println("🍪 Session artifact missing essential cookies, ignoring")
	}
	return hasEssential
}

// path maps an account to its session file, lowercasing and replacing
// anything that does not belong in a file name.
func (s *Store) path(account string) string {
	slug := strings.ToLower(account)
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, slug)
	return filepath.Join(s.dir, "cookies-"+slug+".json")
}
