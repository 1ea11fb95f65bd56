// Pure transformation from raw extracted fields to the canonical job
// record. Deterministic: the caller supplies the reference time.

package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"go-upwork-automation/internal/models"

	"golang.org/x/text/unicode/norm"
)

// RawJob carries one job tile's extracted text, untouched apart from
// whitespace trimming. Both scraper engines produce this shape.
type RawJob struct {
	JobUID      string
	JobTitle    string
	JobURL      string
	PostedTime  string
	Description string

	//client info block
	PaymentVerified string
	Rating          string
	TotalFeedback   string
	Spent           string
	Location        string

	//job details block
	JobTypeLabel    string
	ExperienceLevel string
	Budget          string
	Duration        string

	Skills    []string
	Proposals string
}

const upworkBaseURL = "https://www.upwork.com"

// Normalize maps one raw extraction to a canonical record. It never
// fails: unparseable optional fields degrade to nil/unknown.
func Normalize(raw RawJob, now time.Time) models.Job {
	job := models.Job{
		JobUID:      strings.TrimSpace(raw.JobUID),
		JobTitle:    CleanText(raw.JobTitle),
		JobURL:      absoluteURL(strings.TrimSpace(raw.JobURL)),
		Description: CleanText(raw.Description),
		PostedTime:  CleanText(raw.PostedTime),
		Location:    CleanText(raw.Location),
		Spent:       CleanText(raw.Spent),
		Budget:      CleanText(raw.Budget),
		Proposals:   CleanText(raw.Proposals),
	}

	if parsed, ok := ParseRelativeTime(job.PostedTime, now); ok {
		job.PostedTimeDate = &parsed
	}

	job.TotalFeedback = CleanText(raw.TotalFeedback)
	job.Rating = parseRating(raw.Rating)
	job.JobType = parseJobType(raw.JobTypeLabel)

	//status derivation: low_rating only when a rating exists and is below 4.0
	job.Status = models.StatusScraped
	if job.Rating != nil && *job.Rating < 4.0 {
		job.Status = models.StatusLowRating
	}

	job.ClientInfo = buildMap(map[string]string{
		"payment_verified": CleanText(raw.PaymentVerified),
		"rating":           CleanText(raw.Rating),
		"total_feedback":   job.TotalFeedback,
		"spent":            job.Spent,
		"location":         job.Location,
	})
	job.JobDetails = buildMap(map[string]string{
		"job_type":         CleanText(raw.JobTypeLabel),
		"experience_level": CleanText(raw.ExperienceLevel),
		"budget":           job.Budget,
		"duration":         CleanText(raw.Duration),
	})

	for _, skill := range raw.Skills {
		if s := CleanText(skill); s != "" {
			job.Skills = append(job.Skills, s)
		}
	}

	return job
}

// CleanText NFC-normalizes and collapses all runs of whitespace
// (including non-breaking spaces) into single spaces.
func CleanText(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

func absoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		return upworkBaseURL + "/" + href
	}
	return upworkBaseURL + href
}

// parseRating returns the rating rounded to two decimals, or nil when
// the text is not a number in [0, 5].
func parseRating(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 5 {
		return nil
	}
	v = math.Round(v*100) / 100
	return &v
}

func parseJobType(label string) models.JobType {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "hourly"):
		return models.JobTypeHourly
	case strings.Contains(l, "fixed"):
		return models.JobTypeFixed
	default:
		return models.JobTypeUnknown
	}
}

// ParseRelativeTime turns the site's relative posted-time text
// ("2 hours ago", "yesterday", "last week") into an absolute UTC
// instant relative to ref. Best effort: ok is false on anything it
// does not recognize.
func ParseRelativeTime(s string, ref time.Time) (time.Time, bool) {
	ref = ref.UTC()
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "yesterday":
		return ref.AddDate(0, 0, -1), true
	case "last week":
		return ref.AddDate(0, 0, -7), true
	case "last month":
		return ref.AddDate(0, 0, -30), true
	case "last year":
		return ref.AddDate(0, 0, -365), true
	}

	parts := strings.Fields(s)
	if len(parts) < 3 || parts[len(parts)-1] != "ago" {
		return time.Time{}, false
	}

	n, err := strconv.Atoi(parts[0])
	if err != nil || n < 0 {
		return time.Time{}, false
	}

	switch strings.TrimSuffix(parts[1], "s") {
	case "minute":
		return ref.Add(-time.Duration(n) * time.Minute), true
	case "hour":
		return ref.Add(-time.Duration(n) * time.Hour), true
	case "day":
		return ref.AddDate(0, 0, -n), true
	case "week":
		return ref.AddDate(0, 0, -7*n), true
	case "month":
		//approximate a month as 30 days
		return ref.AddDate(0, 0, -30*n), true
	case "year":
		return ref.AddDate(0, 0, -365*n), true
	}
	return time.Time{}, false
}

func buildMap(fields map[string]string) map[string]string {
	m := make(map[string]string)
	for k, v := range fields {
		if v != "" {
			m[k] = v
		}
	}
	return m
}
