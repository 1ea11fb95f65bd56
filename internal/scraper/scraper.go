// Define an interface for all scraper engines
// Ensure both backends converge on the same record shape

package scraper

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go-upwork-automation/internal/models"

	"golang.org/x/time/rate"
)

// Result is one scrape invocation's output, including the skip counts
// the run summary reports.
type Result struct {
	Jobs         []models.Job
	TilesSkipped int
	PagesSkipped int
}

// Engine is the contract both scraping backends implement. Callers
// pick an engine once at construction and never branch on which one is
// active.
type Engine interface {
	//Scrape paginates search results for query up to maxPages,
	//returning normalized records. A page with zero jobs ends the
	//pagination early; a fresh call restarts from page 1.
	Scrape(ctx context.Context, query string, maxPages int) (*Result, error)

	//Name is the backend name (playwright, colly)
	Name() string
}

// SearchURL builds the job-search URL for one results page.
func SearchURL(base, query, sortBy string, page int) string {
	return fmt.Sprintf("%s/nx/search/jobs/?q=%s&sort=%s&page=%d",
		base, url.QueryEscape(query), sortBy, page)
}

// PageLimiter paces sequential page fetches to respect the target
// site's rate limits. A non-positive delay disables pacing.
func PageLimiter(delayMs int) *rate.Limiter {
	if delayMs <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Duration(delayMs)*time.Millisecond), 1)
}
