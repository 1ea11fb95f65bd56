// Scripted-browser backend: drives Chromium through playwright,
// snapshots each rendered results page and extracts tiles from the
// HTML.

package playwright

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go-upwork-automation/internal/auth"
	"go-upwork-automation/internal/browser"
	"go-upwork-automation/internal/config"
	"go-upwork-automation/internal/normalize"
	"go-upwork-automation/internal/retry"
	"go-upwork-automation/internal/scraper"
	"go-upwork-automation/utils"

	"github.com/PuerkitoBio/goquery"
	pw "github.com/playwright-community/playwright-go"
	"golang.org/x/time/rate"
)

type Scraper struct {
	cfg     *config.Config
	flow    *auth.Flow
	pm      *browser.PlaywrightManager
	policy  retry.Policy
	limiter *rate.Limiter
	baseURL string
}

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
	return "playwright"
}

func (s *Scraper) Scrape(ctx context.Context, query string, maxPages int) (*scraper.Result, error) {
	if maxPages < 1 {
		maxPages = 1
	}

	//authentication failure aborts the whole scrape, no partial results
	art, err := s.flow.Ensure(ctx, s.pm)
	if err != nil {
		return nil, err
	}

	bctx, err := s.pm.NewContext(browser.ToPlaywright(art.Cookies))
	if err != nil {
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}

	debugger := utils.NewScreenShotDebugger(s.cfg.OutputDir)
	result := &scraper.Result{}
	now := time.Now().UTC()

	for pageNum := 1; pageNum <= maxPages; pageNum++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return result, err
		}

		pageURL := scraper.SearchURL(s.baseURL, query, s.cfg.SortBy, pageNum)
		log.Printf("🔍 Scraping page %d: %s", pageNum, pageURL)

		var html string
		err := s.policy.Do(ctx, fmt.Sprintf("render page %d", pageNum), func() error {
			return s.renderPage(page, pageURL, &html)
		})
		if err != nil {
			//page skipped after exhausting retries, keep going
			debugger.CaptureAndLog(page, fmt.Sprintf("page-%d-failed", pageNum), fmt.Sprintf("🚨 Page %d failed to render", pageNum))
			result.PagesSkipped++
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			log.Printf("⚠️ Failed to parse page %d: %v", pageNum, err)
			result.PagesSkipped++
			continue
		}

		if scraper.LoggedOut(doc) {
			//the site swapped results for its login form: the stored
			//cookies are no longer honored
			s.flow.InvalidateSession()
			return nil, fmt.Errorf("%w: session rejected on page %d", auth.ErrAuthenticationFailed, pageNum)
		}

		raws, skipped := scraper.ExtractPage(doc)
		result.TilesSkipped += skipped
		log.Printf("📦 Extracted %d job entries from page %d", len(raws), pageNum)

		if len(raws) == 0 {
			//empty page signals exhaustion, not an error
			log.Printf("ℹ️ Page %d has no jobs, stopping pagination", pageNum)
			break
		}

		for _, raw := range raws {
			result.Jobs = append(result.Jobs, normalize.Normalize(raw, now))
		}
	}

	return result, nil
}

// renderPage navigates and snapshots one results page. A missing tile
// selector is not an error here: the page may legitimately be empty.
func (s *Scraper) renderPage(page pw.Page, pageURL string, html *string) error {
	if _, err := page.Goto(pageURL, pw.PageGotoOptions{
		WaitUntil: pw.WaitUntilStateDomcontentloaded,
		Timeout:   pw.Float(float64(s.cfg.NavTimeoutMs)),
	}); err != nil {
		return err
	}

	if _, err := page.WaitForSelector(scraper.TileSelector, pw.PageWaitForSelectorOptions{
		Timeout: pw.Float(15000),
	}); err != nil {
		log.Println("⏳ No job tiles appeared before the timeout")
	}

	utils.MouseJiggle(page)
	utils.SmoothScroll(page)
	utils.RandomDelay(1000, 2000)

	content, err := page.Content()
	if err != nil {
		return err
	}
	*html = content
	return nil
}
