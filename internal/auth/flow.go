// Conditional Upwork login: reuse a stored session when it is still
// valid, run the full credential flow otherwise.

package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go-upwork-automation/internal/browser"
	"go-upwork-automation/internal/config"
	"go-upwork-automation/internal/session"
	"go-upwork-automation/utils"

	"github.com/playwright-community/playwright-go"
)

// ErrAuthenticationFailed is fatal to the whole run: no partial scrape
// results are produced behind it.
var ErrAuthenticationFailed = errors.New("authentication failed")

// ErrChallengeUnresolved wraps ErrAuthenticationFailed: the site asked
// a security question and no answer was configured.
var ErrChallengeUnresolved = fmt.Errorf("security challenge unresolved: %w", ErrAuthenticationFailed)

type State string

const (
	StateNeedLogin             State = "NEED_LOGIN"
	StateSubmittingCredentials State = "SUBMITTING_CREDENTIALS"
	StateAwaitingChallenge     State = "AWAITING_CHALLENGE"
	StateAuthenticated         State = "AUTHENTICATED"
	StateFailed                State = "FAILED"
)

const loginURL = "https://www.upwork.com/ab/account-security/login"

type Flow struct {
	cfg   *config.Config
	store *session.Store
	state State
}

func New(cfg *config.Config, store *session.Store) *Flow {
	return &Flow{
		cfg:   cfg,
		store: store,
		state: StateNeedLogin,
	}
}

// State reports where the last Ensure call ended up. AUTHENTICATED and
// FAILED are terminal for one invocation.
func (f *Flow) State() State {
	return f.state
}

// Ensure returns a usable session artifact, logging in only when the
// stored one is absent, stale or invalidated.
func (f *Flow) Ensure(ctx context.Context, pm *browser.PlaywrightManager) (*session.Artifact, error) {
	if art, ok := f.store.Load(f.cfg.UpworkEmail); ok {
		log.Println("🍪 Using existing valid session")
		f.state = StateAuthenticated
		return art, nil
	}

	log.Println("🔐 Session absent or expired, performing login")
	f.state = StateNeedLogin

	art, err := f.performLogin(ctx, pm)
	if err != nil {
		f.state = StateFailed
		return nil, err
	}

	//persist before returning so the next run takes the fast path
	if err := f.store.Save(f.cfg.UpworkEmail, art); err != nil {
		log.Printf("⚠️ Failed to persist session: %v", err)
	}
	f.state = StateAuthenticated
	return art, nil
}

// InvalidateSession discards the stored artifact after the site stops
// honoring it mid-run, so the next Ensure performs a fresh login.
func (f *Flow) InvalidateSession() {
	log.Println("🍪 Stored session rejected by the site, invalidating")
	f.store.Invalidate(f.cfg.UpworkEmail)
	f.state = StateNeedLogin
}

func (f *Flow) performLogin(ctx context.Context, pm *browser.PlaywrightManager) (*session.Artifact, error) {
	if pm == nil {
		return nil, fmt.Errorf("%w: no browser available for login", ErrAuthenticationFailed)
	}
	if f.cfg.UpworkEmail == "" || f.cfg.UpworkPassword == "" {
		return nil, fmt.Errorf("%w: missing credentials", ErrAuthenticationFailed)
	}

	bctx, err := pm.NewContext(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	log.Println("🌐 Navigating to Upwork login page")
	if _, err := page.Goto(loginURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(f.cfg.NavTimeoutMs)),
	}); err != nil {
		return nil, fmt.Errorf("%w: login page unreachable: %v", ErrAuthenticationFailed, err)
	}

	f.state = StateSubmittingCredentials

	//email, then continue
	if err := f.fillAndContinue(page, `input[name="login[username]"]`, f.cfg.UpworkEmail, "#login_password_continue"); err != nil {
		return nil, fmt.Errorf("%w: submitting email: %v", ErrAuthenticationFailed, err)
	}

	//password, then submit
	if err := f.fillAndContinue(page, `input[name="login[password]"]`, f.cfg.UpworkPassword, "#login_control_continue"); err != nil {
		return nil, fmt.Errorf("%w: submitting password: %v", ErrAuthenticationFailed, err)
	}

	//secondary verification step, only sometimes presented
	answerField := page.Locator("#login_answer")
	if visible, _ := answerField.IsVisible(); visible {
		f.state = StateAwaitingChallenge
		log.Println("🔒 Security question presented")

		if f.cfg.SecurityAnswer == "" {
			return nil, ErrChallengeUnresolved
		}
		if err := f.fillAndContinue(page, "#login_answer", f.cfg.SecurityAnswer, "#login_control_continue"); err != nil {
			return nil, fmt.Errorf("%w: submitting security answer: %v", ErrAuthenticationFailed, err)
		}
	}

	if err := waitForLoggedInURL(ctx, page); err != nil {
		return nil, err
	}

	cookies, err := bctx.Cookies()
	if err != nil {
		return nil, fmt.Errorf("%w: reading cookies: %v", ErrAuthenticationFailed, err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("%w: no cookies captured after login", ErrAuthenticationFailed)
	}
	log.Printf("🍪 Captured %d cookies", len(cookies))

	return &session.Artifact{
		CapturedAt: time.Now().UTC(),
		Cookies:    browser.FromPlaywright(cookies),
	}, nil
}

func (f *Flow) fillAndContinue(page playwright.Page, fieldSelector, value, buttonSelector string) error {
	if err := page.Locator(fieldSelector).First().Fill(value); err != nil {
		return err
	}
	utils.RandomDelay(800, 2000)
	if err := page.Locator(buttonSelector).First().Click(); err != nil {
		return err
	}
	utils.RandomDelay(1500, 3000)
	return nil
}

// waitForLoggedInURL polls until the browser lands on a logged-in page.
// Invalid credentials leave us stuck on the login form until the bound
// is exhausted.
func waitForLoggedInURL(ctx context.Context, page playwright.Page) error {
	for attempt := 0; attempt < 10; attempt++ {
		current := page.URL()
		if strings.Contains(current, "find-work") || strings.Contains(current, "my-jobs") {
			log.Println("✅ Login confirmed by URL")
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrAuthenticationFailed, ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	return fmt.Errorf("%w: still on %s after login", ErrAuthenticationFailed, page.URL())
}
