package baserow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"go-upwork-automation/internal/models"

	mapset "github.com/deckarep/golang-set/v2"
)

// FetchAll pages through every row in the table. An empty results page
// or a null next link ends the pagination.
func (c *Client) FetchAll(ctx context.Context) ([]Row, error) {
	var rows []Row

	for page := 1; ; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		url := fmt.Sprintf("%s&page=%d&size=%d", c.rowsURL(), page, c.pageSize)

		var resp listResponse
		err := c.policy.Do(ctx, fmt.Sprintf("fetch rows page %d", page), func() error {
			resp = listResponse{}
			return c.doJSON(ctx, http.MethodGet, url, nil, &resp)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
		}

		if len(resp.Results) == 0 {
			break
		}
		rows = append(rows, resp.Results...)

		if resp.Next == nil {
			break
		}
	}

	log.Printf("📦 Fetched %d existing rows", len(rows))
	return rows, nil
}

// UploadMany stores jobs in batches, returning the created rows. With
// deduplicate set, jobs whose uid already exists in the table (or
// earlier in the same slice) are dropped; the first occurrence wins.
func (c *Client) UploadMany(ctx context.Context, jobs []models.Job, deduplicate bool) ([]Row, error) {
	seen := mapset.NewSet[string]()
	if deduplicate {
		existing, err := c.FetchAll(ctx)
		if err != nil {
			return nil, err
		}
		for _, row := range existing {
			seen.Add(row.JobUID)
		}
	}

	var payloads []map[string]any
	for _, job := range jobs {
		if job.JobUID == "" {
			log.Println("⚠️ Skipping job with empty uid")
			continue
		}
		if deduplicate && !seen.Add(job.JobUID) {
			continue
		}
		payloads = append(payloads, rowPayload(job))
	}

	if len(payloads) == 0 {
		log.Println("ℹ️ Nothing new to upload")
		return nil, nil
	}

	var created []Row
	for start := 0; start < len(payloads); start += c.batchSize {
		end := start + c.batchSize
		if end > len(payloads) {
			end = len(payloads)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return created, &UploadError{Created: len(created), Err: err}
		}

		var resp batchResponse
		err := c.policy.Do(ctx, fmt.Sprintf("upload batch %d-%d", start, end), func() error {
			resp = batchResponse{}
			body := map[string]any{"items": payloads[start:end]}
			return c.doJSON(ctx, http.MethodPost, c.batchURL(), body, &resp)
		})
		if err != nil {
			return created, &UploadError{Created: len(created), Err: fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)}
		}
		created = append(created, resp.Items...)
	}

	log.Printf("✅ Uploaded %d new rows", len(created))
	return created, nil
}

// CleanUpOldRows deletes rows created strictly before now minus the
// retention window. A row exactly at the boundary survives; days=0
// clears every previously created row. Individual delete failures are
// logged and skipped so one bad row never blocks the sweep.
func (c *Client) CleanUpOldRows(ctx context.Context, days int) (int, error) {
	rows, err := c.FetchAll(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := c.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	deleted := 0

	for _, row := range rows {
		createdOn, err := time.Parse(time.RFC3339, row.CreatedOn)
		if err != nil {
			log.Printf("⚠️ Row %d has unparseable created_on %q, skipping", row.ID, row.CreatedOn)
			continue
		}
		if !createdOn.UTC().Before(cutoff) {
			continue
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return deleted, err
		}

		err = c.policy.Do(ctx, fmt.Sprintf("delete row %d", row.ID), func() error {
			return c.doJSON(ctx, http.MethodDelete, c.rowURL(row.ID), nil, nil)
		})
		if err != nil {
			log.Printf("⚠️ Failed to delete row %d: %v", row.ID, err)
			continue
		}
		deleted++
	}

	log.Printf("🧹 Deleted %d rows older than %d days", deleted, days)
	return deleted, nil
}

// DeleteDuplicateRows finds rows sharing a job_uid and deletes all but
// the newest of each group. Individual delete failures are logged and
// skipped; the count reflects only confirmed deletions.
func (c *Client) DeleteDuplicateRows(ctx context.Context) (int, error) {
	rows, err := c.FetchAll(ctx)
	if err != nil {
		return 0, err
	}

	groups := make(map[string][]Row)
	for _, row := range rows {
		if row.JobUID == "" {
			continue
		}
		groups[row.JobUID] = append(groups[row.JobUID], row)
	}

	deleted := 0
	for uid, group := range groups {
		if len(group) < 2 {
			continue
		}

		keep := group[0]
		for _, row := range group[1:] {
			if newer(row, keep) {
				keep = row
			}
		}
		log.Printf("🔍 Found %d rows for uid %s, keeping row %d", len(group), uid, keep.ID)

		for _, row := range group {
			if row.ID == keep.ID {
				continue
			}
			if err := c.limiter.Wait(ctx); err != nil {
				return deleted, err
			}
			err := c.policy.Do(ctx, fmt.Sprintf("delete duplicate row %d", row.ID), func() error {
				return c.doJSON(ctx, http.MethodDelete, c.rowURL(row.ID), nil, nil)
			})
			if err != nil {
				log.Printf("⚠️ Failed to delete duplicate row %d: %v", row.ID, err)
				continue
			}
			deleted++
		}
	}

	log.Printf("🧹 Deleted %d duplicate rows", deleted)
	return deleted, nil
}

// newer orders rows by created_on, falling back to the row id when a
// timestamp is missing, unparseable or tied.
func newer(a, b Row) bool {
	at, aerr := time.Parse(time.RFC3339, a.CreatedOn)
	bt, berr := time.Parse(time.RFC3339, b.CreatedOn)
	switch {
	case aerr == nil && berr == nil && !at.Equal(bt):
		return at.After(bt)
	case aerr == nil && berr != nil:
		return true
	case aerr != nil && berr == nil:
		return false
	}
	return a.ID > b.ID
}

// rowPayload flattens one job into the table's column shape. Structured
// fields are stored as JSON text blobs.
func rowPayload(j models.Job) map[string]any {
	payload := map[string]any{
		"job_uid":        j.JobUID,
		"job_title":      j.JobTitle,
		"job_url":        j.JobURL,
		"description":    j.Description,
		"posted_time":    j.PostedTime,
		"location":       j.Location,
		"total_feedback": j.TotalFeedback,
		"spent":          j.Spent,
		"budget":         j.Budget,
		"job_type":       string(j.JobType),
		"proposals":      j.Proposals,
		"status":         string(j.Status),
	}
	if j.PostedTimeDate != nil {
		payload["posted_time_date"] = j.PostedTimeDate.UTC().Format(time.RFC3339)
	}
	if j.Rating != nil {
		payload["rating"] = *j.Rating
	}
	payload["client_info"] = jsonBlob(j.ClientInfo)
	payload["job_details"] = jsonBlob(j.JobDetails)
	payload["skills"] = jsonBlob(j.Skills)
	return payload
}

func jsonBlob(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
