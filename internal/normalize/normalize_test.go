package normalize

import (
	"testing"
	"time"

	"go-upwork-automation/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_RatingAndStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		rating     string
		wantRating *float64
		wantStatus models.Status
	}{
		{"high rating stays scraped", "4.9", ptr(4.9), models.StatusScraped},
		//boundary: exactly 4.0 is not low
		{"boundary 4.0 stays scraped", "4.0", ptr(4.0), models.StatusScraped},
		{"below 4.0 flagged", "3.99", ptr(3.99), models.StatusLowRating},
		{"missing rating stays scraped", "", nil, models.StatusScraped},
		{"garbage rating stays scraped", "n/a", nil, models.StatusScraped},
		{"out of range dropped", "7.5", nil, models.StatusScraped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := Normalize(RawJob{JobUID: "u1", JobTitle: "t", JobURL: "/job", Rating: tt.rating}, now)
			if tt.wantRating == nil {
				assert.Nil(t, job.Rating)
			} else {
				if assert.NotNil(t, job.Rating) {
					assert.InDelta(t, *tt.wantRating, *job.Rating, 0.001)
				}
			}
			assert.Equal(t, tt.wantStatus, job.Status)
		})
	}
}

func TestNormalize_JobType(t *testing.T) {
	now := time.Now()

	tests := []struct {
		label string
		want  models.JobType
	}{
		{"Hourly: $15.00 - $30.00", models.JobTypeHourly},
		{"Fixed-price", models.JobTypeFixed},
		{"Fixed price", models.JobTypeFixed},
		{"", models.JobTypeUnknown},
		{"something else", models.JobTypeUnknown},
	}

	for _, tt := range tests {
		job := Normalize(RawJob{JobTypeLabel: tt.label}, now)
		assert.Equal(t, tt.want, job.JobType, "label %q", tt.label)
	}
}

func TestNormalize_AbsoluteURL(t *testing.T) {
	now := time.Now()

	tests := []struct {
		href string
		want string
	}{
		{"/jobs/~0123abc", "https://www.upwork.com/jobs/~0123abc"},
		{"jobs/~0123abc", "https://www.upwork.com/jobs/~0123abc"},
		{"https://www.upwork.com/jobs/~x", "https://www.upwork.com/jobs/~x"},
		{"", ""},
	}

	for _, tt := range tests {
		job := Normalize(RawJob{JobURL: tt.href}, now)
		assert.Equal(t, tt.want, job.JobURL)
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\tb  c  "))
	assert.Equal(t, "", CleanText("      "))
}

func TestParseRelativeTime(t *testing.T) {
	ref := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2 hours ago", ref.Add(-2 * time.Hour), true},
		{"1 minute ago", ref.Add(-time.Minute), true},
		{"3 days ago", ref.AddDate(0, 0, -3), true},
		{"2 weeks ago", ref.AddDate(0, 0, -14), true},
		{"1 month ago", ref.AddDate(0, 0, -30), true},
		{"yesterday", ref.AddDate(0, 0, -1), true},
		{"last week", ref.AddDate(0, 0, -7), true},
		{"Posted recently", time.Time{}, false},
		{"", time.Time{}, false},
		{"ago", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRelativeTime(tt.in, ref)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNormalize_UnparseablePostedTimeLeavesNil(t *testing.T) {
	job := Normalize(RawJob{PostedTime: "who knows when"}, time.Now())
	assert.Nil(t, job.PostedTimeDate)
	assert.Equal(t, "who knows when", job.PostedTime)
}

func TestNormalize_MapsDropEmptyFields(t *testing.T) {
	job := Normalize(RawJob{
		PaymentVerified: "Payment verified",
		Location:        "Germany",
		Skills:          []string{"Go", "", "  Docker "},
	}, time.Now())

	assert.Equal(t, "Payment verified", job.ClientInfo["payment_verified"])
	assert.Equal(t, "Germany", job.ClientInfo["location"])
	_, hasRating := job.ClientInfo["rating"]
	assert.False(t, hasRating)
	assert.Equal(t, []string{"Go", "Docker"}, job.Skills)
}

func ptr(v float64) *float64 { return &v }
