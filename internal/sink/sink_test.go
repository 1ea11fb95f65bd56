package sink

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-upwork-automation/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSaveJobs_WritesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	jobs := []models.Job{
		{JobUID: "~1", JobTitle: "Go developer", Status: models.StatusScraped},
		{JobUID: "~2", JobTitle: "API work", Status: models.StatusLowRating},
	}

	path, err := SaveJobs(jobs, dir)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "extracted_jobs_"))
	assert.True(t, strings.HasSuffix(path, ".json"))

	data, err := os.ReadFile(path)
	assert.NoError(t, err)

	var loaded []models.Job
	assert.NoError(t, json.Unmarshal(data, &loaded))
	if assert.Len(t, loaded, 2) {
		assert.Equal(t, "~1", loaded[0].JobUID)
	}
}

func TestSaveJobs_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	path, err := SaveJobs(nil, dir)
	assert.NoError(t, err)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	//an empty run still leaves a valid JSON document behind
	assert.Equal(t, "null", strings.TrimSpace(string(data)))
}
