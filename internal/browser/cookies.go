package browser

import (
	"net/http"
	"time"

	"go-upwork-automation/internal/session"

	"github.com/playwright-community/playwright-go"
)

// ToPlaywright converts persisted session cookies into the shape
// AddCookies expects.
func ToPlaywright(cookies []session.Cookie) []playwright.OptionalCookie {
	out := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		pc := playwright.OptionalCookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: playwright.String(c.Domain),
			Path:   playwright.String(c.Path),
		}
		if c.Expires > 0 {
			pc.Expires = playwright.Float(c.Expires)
		}
		if c.HTTPOnly {
			pc.HttpOnly = playwright.Bool(true)
		}
		if c.Secure {
			pc.Secure = playwright.Bool(true)
		}
		switch c.SameSite {
		case "Lax":
			pc.SameSite = playwright.SameSiteAttributeLax
		case "Strict":
			pc.SameSite = playwright.SameSiteAttributeStrict
		case "None":
			pc.SameSite = playwright.SameSiteAttributeNone
		}
		out = append(out, pc)
	}
	return out
}

// FromPlaywright converts cookies captured from a browser context into
// the persisted session shape.
func FromPlaywright(cookies []playwright.Cookie) []session.Cookie {
	out := make([]session.Cookie, 0, len(cookies))
	for _, c := range cookies {
		sc := session.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HttpOnly,
			Secure:   c.Secure,
		}
		if c.SameSite != nil {
			sc.SameSite = string(*c.SameSite)
		}
		out = append(out, sc)
	}
	return out
}

// ToHTTP converts session cookies for backends that speak plain HTTP
// (the colly engine sets them on its collector).
func ToHTTP(cookies []session.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HttpOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			hc.Expires = time.Unix(int64(c.Expires), 0)
		}
		out = append(out, hc)
	}
	return out
}
