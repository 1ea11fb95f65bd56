// Crawling backend: a colly collector carrying the authenticated
// session cookies, extracting tiles as the crawler parses each page.

package colly

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-upwork-automation/internal/auth"
	"go-upwork-automation/internal/browser"
	"go-upwork-automation/internal/config"
	"go-upwork-automation/internal/normalize"
	"go-upwork-automation/internal/retry"
	"go-upwork-automation/internal/scraper"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

const collyUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

type Scraper struct {
	cfg     *config.Config
	flow    *auth.Flow
	pm      *browser.PlaywrightManager
	policy  retry.Policy
	limiter *rate.Limiter
	baseURL string
}

// New builds the colly-backed engine. The playwright manager is only
// touched when the stored session is invalid and a login is required.
func New(cfg *config.Config, flow *auth.Flow, pm *browser.PlaywrightManager) *Scraper {
	return &Scraper{
		cfg:     cfg,
		flow:    flow,
		pm:      pm,
		policy:  cfg.Retry.Policy(),
		limiter: scraper.PageLimiter(cfg.PageDelayMs),
		baseURL: cfg.SearchBaseURL,
	}
}

func (s *Scraper) Name() string {
	return "colly"
}

func (s *Scraper) Scrape(ctx context.Context, query string, maxPages int) (*scraper.Result, error) {
	if maxPages < 1 {
		maxPages = 1
	}

	art, err := s.flow.Ensure(ctx, s.pm)
	if err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.UserAgent(collyUserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(time.Duration(s.cfg.NavTimeoutMs) * time.Millisecond)

	if err := c.SetCookies(s.baseURL, browser.ToHTTP(art.Cookies)); err != nil {
		return nil, fmt.Errorf("setting session cookies: %w", err)
	}

	result := &scraper.Result{}

	//per-visit state, reset before each page
	var pageRaws []normalize.RawJob
	var pageSkipped int
	var loggedOut bool

	c.OnHTML(scraper.LoginFormSelector, func(e *colly.HTMLElement) {
		loggedOut = true
	})

	c.OnHTML(scraper.TileSelector, func(e *colly.HTMLElement) {
		raw, err := scraper.ExtractTile(e.DOM)
		if err != nil {
			pageSkipped++
			log.Printf("⚠️ Skipping job tile: %v", err)
			return
		}
		pageRaws = append(pageRaws, raw)
	})

	c.OnError(func(r *colly.Response, err error) {
		log.Printf("⚠️ Request to %s failed: %v", r.Request.URL, err)
	})

	now := time.Now().UTC()

	for pageNum := 1; pageNum <= maxPages; pageNum++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return result, err
		}

		pageURL := scraper.SearchURL(s.baseURL, query, s.cfg.SortBy, pageNum)
		log.Printf("🔍 Crawling page %d: %s", pageNum, pageURL)

		err := s.policy.Do(ctx, fmt.Sprintf("fetch page %d", pageNum), func() error {
			pageRaws = pageRaws[:0]
			pageSkipped = 0
			loggedOut = false
			return c.Visit(pageURL)
		})
		if err != nil {
			result.PagesSkipped++
			continue
		}

		if loggedOut {
			//the site swapped results for its login form: the stored
			//cookies are no longer honored
			s.flow.InvalidateSession()
			return nil, fmt.Errorf("%w: session rejected on page %d", auth.ErrAuthenticationFailed, pageNum)
		}

		result.TilesSkipped += pageSkipped
		log.Printf("📦 Extracted %d job entries from page %d", len(pageRaws), pageNum)

		if len(pageRaws) == 0 {
			log.Printf("ℹ️ Page %d has no jobs, stopping pagination", pageNum)
			break
		}

		for _, raw := range pageRaws {
			result.Jobs = append(result.Jobs, normalize.Normalize(raw, now))
		}
	}

	return result, nil
}
