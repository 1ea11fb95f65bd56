package scraper

import (
	"errors"
	"log"
	"strings"

	"go-upwork-automation/internal/normalize"

	"github.com/PuerkitoBio/goquery"
)

// TileSelector identifies one job posting in the search results.
const TileSelector = "article.job-tile"

// LoginFormSelector matches the credential form the site serves in
// place of results once it stops honoring the session cookies.
const LoginFormSelector = `input[name="login[username]"]`

// LoggedOut reports whether a rendered page is actually the login form.
// A revoked session does not error: the site just swaps the results for
// a credential prompt, which would otherwise read as an empty page.
func LoggedOut(doc *goquery.Document) bool {
	return doc.Find(LoginFormSelector).Length() > 0
}

var errTileIncomplete = errors.New("job tile missing uid, title or url")

// ExtractPage pulls every job tile out of a parsed results page. A
// malformed tile is logged and skipped; it never aborts the page.
func ExtractPage(doc *goquery.Document) (raws []normalize.RawJob, skipped int) {
	doc.Find(TileSelector).Each(func(_ int, tile *goquery.Selection) {
		raw, err := ExtractTile(tile)
		if err != nil {
			skipped++
			log.Printf("⚠️ Skipping job tile: %v", err)
			return
		}
		raws = append(raws, raw)
	})
	return raws, skipped
}

// ExtractTile reads one job tile. The selectors mirror the site's
// search results markup; uid, title and url are required, everything
// else is optional.
func ExtractTile(tile *goquery.Selection) (normalize.RawJob, error) {
	raw := normalize.RawJob{}

	raw.JobUID, _ = tile.Attr("data-ev-job-uid")

	titleLink := tile.Find("h2.job-tile-title a").First()
	raw.JobTitle = text(titleLink)
	raw.JobURL, _ = titleLink.Attr("href")

	raw.PostedTime = text(tile.Find(`small[data-test="job-pubilshed-date"] span:last-child`).First())

	desc := tile.Find(`div[data-test="UpCLineClamp JobDescription"] p`).First()
	if desc.Length() == 0 {
		//fall back to the whole clamp container
		desc = tile.Find(`div[data-test="UpCLineClamp JobDescription"]`).First()
	}
	raw.Description = text(desc)

	client := tile.Find(`ul[data-test="JobInfoClient"]`).First()
	raw.PaymentVerified = text(client.Find(`li[data-test="payment-verified"] .air3-badge-tagline`).First())
	raw.Rating = text(client.Find(".air3-rating-value-text").First())
	raw.TotalFeedback = text(client.Find(`li[data-test="total-feedback"] div.air3-popper-content div`).First())
	raw.Spent = text(client.Find(".air3-badge-tagline strong").First())
	raw.Location = text(client.Find(`li[data-test="location"] div.air3-badge-tagline`).First())

	details := tile.Find(`ul[data-test="JobInfo"]`).First()
	raw.JobTypeLabel = text(details.Find(`li[data-test="job-type-label"] strong`).First())
	raw.ExperienceLevel = text(details.Find(`li[data-test="experience-level"] strong`).First())
	raw.Budget = text(details.Find(`li[data-test="is-fixed-price"] strong:last-child`).First())
	raw.Duration = text(details.Find(`li[data-test="duration-label"] strong:last-child`).First())

	tile.Find("div.air3-token-container button.air3-token span").Each(func(_ int, s *goquery.Selection) {
		if skill := text(s); skill != "" {
			raw.Skills = append(raw.Skills, skill)
		}
	})

	raw.Proposals = text(tile.Find(`li[data-test="proposals-tier"] strong`).First())

	if raw.JobUID == "" || raw.JobTitle == "" || raw.JobURL == "" {
		return raw, errTileIncomplete
	}
	return raw, nil
}

func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
