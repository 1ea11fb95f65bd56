// Package scrapertest builds search-results HTML fixtures for the
// extraction and engine tests.
package scrapertest

import (
	"fmt"
	"strings"
)

// JobTileHTML renders one search-result tile with the markup the
// extractor expects.
func JobTileHTML(uid, title string) string {
	return fmt.Sprintf(`
<article class="job-tile" data-ev-job-uid="%s">
  <small data-test="job-pubilshed-date"><span>Posted</span><span>2 hours ago</span></small>
  <h2 class="job-tile-title"><a href="/jobs/%s">%s</a></h2>
  <ul data-test="JobInfo">
    <li data-test="job-type-label"><strong>Hourly: $25.00 - $50.00</strong></li>
    <li data-test="experience-level"><strong>Intermediate</strong></li>
    <li data-test="duration-label"><span>Est. time:</span> <strong>1 to 3 months</strong></li>
  </ul>
  <div data-test="UpCLineClamp JobDescription"><p>Need a Go developer for API work.</p></div>
  <div class="air3-token-container">
    <button class="air3-token"><span>Golang</span></button>
    <button class="air3-token"><span>PostgreSQL</span></button>
  </div>
  <ul data-test="JobInfoClient">
    <li data-test="payment-verified"><div class="air3-badge-tagline">Payment verified</div></li>
    <li data-test="total-feedback">
      <span class="air3-rating-value-text">4.85</span>
      <div class="air3-popper-content"><div>4.85 of 23 reviews</div></div>
    </li>
    <li data-test="spent"><div class="air3-badge-tagline"><strong>$10K+</strong> spent</div></li>
    <li data-test="location"><div class="air3-badge-tagline">Germany</div></li>
  </ul>
  <ul><li data-test="proposals-tier"><strong>20 to 50</strong></li></ul>
</article>`, uid, uid, title)
}

// ResultsPage wraps tiles in a minimal search-results document.
func ResultsPage(tiles ...string) string {
	return "<html><body><section>" + strings.Join(tiles, "\n") + "</section></body></html>"
}

// LoginPageHTML is the credential form the site serves instead of
// results once a session is no longer honored.
func LoginPageHTML() string {
	return `<html><body>
  <form id="login">
    <input name="login[username]" type="email" />
    <button id="login_password_continue">Continue</button>
  </form>
</body></html>`
}
