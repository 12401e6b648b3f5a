// Package report writes the machine-readable summary of a runner execution
// into the output directory, alongside the screenshots.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hairizuan-noorazman/browser-smoke/run"
	"github.com/hairizuan-noorazman/browser-smoke/runner"
	"github.com/hairizuan-noorazman/browser-smoke/storage"
)

// FileName is the report file written into the output directory.
const FileName = "report.json"

// Report is the serialized outcome of one runner invocation.
type Report struct {
	SuiteName   string           `json:"suite_name"`
	GeneratedAt time.Time        `json:"generated_at"`
	Total       int              `json:"total"`
	Passed      int              `json:"passed"`
	Failed      int              `json:"failed"`
	Results     []*runner.Result `json:"results"`
}

// Build aggregates results into a report.
func Build(suiteName string, results []*runner.Result) Report {
	r := Report{
		SuiteName:   suiteName,
		GeneratedAt: time.Now(),
		Total:       len(results),
		Results:     results,
	}
	for _, res := range results {
		if res.Status == run.StatusPassed {
			r.Passed++
		} else {
			r.Failed++
		}
	}
	return r
}

// AllPassed reports whether every case completed without error.
func (r Report) AllPassed() bool {
	return r.Failed == 0 && r.Total > 0
}

// Write serializes the report into blob storage as report.json.
func Write(ctx context.Context, blob storage.BlobStorage, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := storage.UploadBytes(ctx, blob, FileName, data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
