// HTTP client for the Baserow rows API: list with pagination, batch
// create and per-row delete, all wrapped in the shared retry policy.

package baserow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go-upwork-automation/internal/config"
	"go-upwork-automation/internal/retry"

	"golang.org/x/time/rate"
)

// ErrRemoteUnavailable marks store failures that persisted through the
// retry policy. Callers should keep local output and report the error.
var ErrRemoteUnavailable = errors.New("baserow unavailable")

// UploadError reports a batch upload that failed partway. Created is
// the number of rows confirmed stored before the failure.
type UploadError struct {
	Created int
	Err     error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed after %d rows created: %v", e.Created, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Row is one stored job row as the API returns it.
type Row struct {
	ID        int    `json:"id"`
	JobUID    string `json:"job_uid"`
	JobTitle  string `json:"job_title"`
	JobURL    string `json:"job_url"`
	CreatedOn string `json:"created_on"`
}

type listResponse struct {
	Count   int     `json:"count"`
	Next    *string `json:"next"`
	Results []Row   `json:"results"`
}

type batchResponse struct {
	Items []Row `json:"items"`
}

// httpError carries the status code so the retry policy can treat 4xx
// as permanent and honor Retry-After on 429.
type httpError struct {
	status     int
	body       string
	retryAfter time.Duration
}

func (e *httpError) Error() string {
	return fmt.Sprintf("baserow returned %d: %s", e.status, e.body)
}

func (e *httpError) RetryAfter() time.Duration { return e.retryAfter }

type Client struct {
	http      *http.Client
	baseURL   string
	apiKey    string
	tableID   string
	pageSize  int
	batchSize int
	policy    retry.Policy
	limiter   *rate.Limiter
	now       func() time.Time
}

func NewClient(cfg *config.Config) *Client {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.Baserow.DelayMs > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Duration(cfg.Baserow.DelayMs)*time.Millisecond), 1)
	}
	return &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		baseURL:   cfg.Baserow.BaseURL,
		apiKey:    cfg.Baserow.APIKey,
		tableID:   cfg.Baserow.TableID,
		pageSize:  cfg.Baserow.PageSize,
		batchSize: cfg.Baserow.BatchSize,
		policy:    cfg.Retry.Policy(),
		limiter:   limiter,
		now:       time.Now,
	}
}

func (c *Client) rowsURL() string {
	return fmt.Sprintf("%s/%s/?user_field_names=true", c.baseURL, c.tableID)
}

func (c *Client) batchURL() string {
	return fmt.Sprintf("%s/%s/batch/?user_field_names=true", c.baseURL, c.tableID)
}

func (c *Client) rowURL(id int) string {
	return fmt.Sprintf("%s/%s/%d/", c.baseURL, c.tableID, id)
}

// doJSON performs one authenticated request and decodes the response
// into out when it is non-nil. Client errors other than 429 come back
// wrapped as permanent so the retry policy stops immediately.
func (c *Client) doJSON(ctx context.Context, method, url string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return retry.Permanent(fmt.Errorf("encoding request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		herr := &httpError{status: resp.StatusCode, body: string(data)}
		if resp.StatusCode == http.StatusTooManyRequests {
			if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
				herr.retryAfter = time.Duration(secs) * time.Second
			}
			return herr
		}
		if resp.StatusCode >= 500 {
			return herr
		}
		return retry.Permanent(herr)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
