// Local JSON output: every successful run leaves a timestamped file on
// disk even when the remote store is unreachable.

package sink

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go-upwork-automation/internal/models"
)

// SaveJobs writes the scraped records to a timestamped JSON file under
// outputDir and returns its path.
func SaveJobs(jobs []models.Job, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	name := fmt.Sprintf("extracted_jobs_%s.json", time.Now().Format("20060102_150405"))
	path := filepath.Join(outputDir, name)

	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding jobs: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}

	log.Printf("💾 Saved %d jobs to %s", len(jobs), path)
	return path, nil
}
