package models

import (
	"time"
)

type JobType string

const (
	JobTypeHourly  JobType = "hourly"
	JobTypeFixed   JobType = "fixed"
	JobTypeUnknown JobType = "unknown"
)

type Status string

const (
	StatusScraped   Status = "scraped"
	StatusLowRating Status = "low_rating"
)

// Job is the canonical record exchanged between the scraper engines,
// the local result sink and the Baserow sync layer.
// JobUID is the sole identity key: it never changes once assigned and
// is the only field consulted for deduplication.
type Job struct {
	JobUID         string            `json:"job_uid"`
	JobTitle       string            `json:"job_title"`
	JobURL         string            `json:"job_url"`
	Description    string            `json:"description"`
	PostedTime     string            `json:"posted_time"`
	PostedTimeDate *time.Time        `json:"posted_time_date,omitempty"` // nil when the relative time could not be parsed
	Location       string            `json:"location"`
	Rating         *float64          `json:"rating,omitempty"` // 0.00-5.00, two decimals; nil when not numeric
	TotalFeedback  string            `json:"total_feedback"`
	Spent          string            `json:"spent"`
	Budget         string            `json:"budget"`
	JobType        JobType           `json:"job_type"`
	ClientInfo     map[string]string `json:"client_info"`
	JobDetails     map[string]string `json:"job_details"`
	Skills         []string          `json:"skills"`
	Proposals      string            `json:"proposals"`
	Status         Status            `json:"status"`
}
