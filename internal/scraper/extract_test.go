package scraper

import (
	"strings"
	"testing"

	"go-upwork-automation/internal/scraper/scrapertest"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
)

func parsePage(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc
}

func TestExtractPage_FullTile(t *testing.T) {
	doc := parsePage(t, scrapertest.ResultsPage(scrapertest.JobTileHTML("~0111", "Go backend engineer")))

	raws, skipped := ExtractPage(doc)
	assert.Equal(t, 0, skipped)
	if !assert.Len(t, raws, 1) {
		return
	}

	raw := raws[0]
	assert.Equal(t, "~0111", raw.JobUID)
	assert.Equal(t, "Go backend engineer", raw.JobTitle)
	assert.Equal(t, "/jobs/~0111", raw.JobURL)
	assert.Equal(t, "2 hours ago", raw.PostedTime)
	assert.Equal(t, "Need a Go developer for API work.", raw.Description)
	assert.Equal(t, "Hourly: $25.00 - $50.00", raw.JobTypeLabel)
	assert.Equal(t, "Intermediate", raw.ExperienceLevel)
	assert.Equal(t, "1 to 3 months", raw.Duration)
	assert.Equal(t, "Payment verified", raw.PaymentVerified)
	assert.Equal(t, "4.85", raw.Rating)
	assert.Equal(t, "4.85 of 23 reviews", raw.TotalFeedback)
	assert.Equal(t, "$10K+", raw.Spent)
	assert.Equal(t, "Germany", raw.Location)
	assert.Equal(t, []string{"Golang", "PostgreSQL"}, raw.Skills)
	assert.Equal(t, "20 to 50", raw.Proposals)
}

func TestExtractPage_SkipsIncompleteTiles(t *testing.T) {
	missingUID := `<article class="job-tile">
      <h2 class="job-tile-title"><a href="/jobs/~bad">No uid here</a></h2>
    </article>`
	doc := parsePage(t, scrapertest.ResultsPage(
		scrapertest.JobTileHTML("~0222", "First"),
		missingUID,
		scrapertest.JobTileHTML("~0333", "Second"),
	))

	raws, skipped := ExtractPage(doc)
	assert.Equal(t, 1, skipped)
	if assert.Len(t, raws, 2) {
		assert.Equal(t, "~0222", raws[0].JobUID)
		assert.Equal(t, "~0333", raws[1].JobUID)
	}
}

func TestExtractPage_EmptyPage(t *testing.T) {
	doc := parsePage(t, scrapertest.ResultsPage())

	raws, skipped := ExtractPage(doc)
	assert.Empty(t, raws)
	assert.Equal(t, 0, skipped)
}

func TestExtractTile_OptionalFieldsMissing(t *testing.T) {
	minimal := `<article class="job-tile" data-ev-job-uid="~0444">
      <h2 class="job-tile-title"><a href="/jobs/~0444">Bare bones</a></h2>
    </article>`
	doc := parsePage(t, scrapertest.ResultsPage(minimal))

	raws, skipped := ExtractPage(doc)
	assert.Equal(t, 0, skipped)
	if assert.Len(t, raws, 1) {
		assert.Equal(t, "~0444", raws[0].JobUID)
		assert.Empty(t, raws[0].Rating)
		assert.Empty(t, raws[0].Skills)
	}
}

func TestLoggedOut(t *testing.T) {
	login := parsePage(t, scrapertest.LoginPageHTML())
	assert.True(t, LoggedOut(login))

	results := parsePage(t, scrapertest.ResultsPage(scrapertest.JobTileHTML("~0555", "Still logged in")))
	assert.False(t, LoggedOut(results))

	//an empty results page is exhaustion, not a logout
	empty := parsePage(t, scrapertest.ResultsPage())
	assert.False(t, LoggedOut(empty))
}

func TestSearchURL(t *testing.T) {
	got := SearchURL("https://www.upwork.com", "go developer", "recency", 2)
	assert.Equal(t, "https://www.upwork.com/nx/search/jobs/?q=go+developer&sort=recency&page=2", got)
}
