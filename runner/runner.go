// Package runner executes suite cases against a browser driver and records
// the outcome.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hairizuan-noorazman/browser-smoke/driver"
	"github.com/hairizuan-noorazman/browser-smoke/logger"
	"github.com/hairizuan-noorazman/browser-smoke/run"
	"github.com/hairizuan-noorazman/browser-smoke/storage"
	"github.com/hairizuan-noorazman/browser-smoke/suite"
)

// Result holds the outcome of one executed case.
type Result struct {
	RunID          uuid.UUID     `json:"run_id,omitempty"`
	SuiteName      string        `json:"suite_name"`
	CaseName       string        `json:"case_name"`
	Status         run.Status    `json:"status"`
	ScreenshotPath string        `json:"screenshot_path,omitempty"`
	StartedAt      time.Time     `json:"started_at"`
	CompletedAt    time.Time     `json:"completed_at"`
	Duration       time.Duration `json:"duration"`
	Error          string        `json:"error,omitempty"`

	err error
}

// Err returns the failure that ended the case, or nil.
func (r *Result) Err() error {
	return r.err
}

// Runner drives the composite action: open session, maximize, set command
// delay, capture screenshot. Execution is strictly sequential with no
// retries; the first driver failure aborts the remaining steps.
type Runner struct {
	driver        driver.Driver
	storage       storage.BlobStorage
	runStore      run.Store
	artifactStore run.ArtifactStore
	logger        logger.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithStores enables run history recording. Without stores the runner still
// produces the screenshot and report but leaves no database rows.
func WithStores(runStore run.Store, artifactStore run.ArtifactStore) Option {
	return func(r *Runner) {
		r.runStore = runStore
		r.artifactStore = artifactStore
	}
}

// New creates a runner writing screenshots through blob storage.
func New(d driver.Driver, blob storage.BlobStorage, log logger.Logger, opts ...Option) *Runner {
	r := &Runner{
		driver:  d,
		storage: blob,
		logger:  log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ExecuteSuite runs every case in the suite in order. A failed case does not
// stop later cases; each result carries its own outcome.
func (r *Runner) ExecuteSuite(ctx context.Context, s suite.Suite) []*Result {
	results := make([]*Result, 0, len(s.Cases))
	for _, c := range s.Cases {
		results = append(results, r.ExecuteCase(ctx, s.Name, c))
	}
	return results
}

// ExecuteCase runs one composite action. The session is closed afterwards
// unless the case asks to be kept open for inspection.
func (r *Runner) ExecuteCase(ctx context.Context, suiteName string, c suite.Case) *Result {
	result := &Result{
		SuiteName: suiteName,
		CaseName:  c.Name,
		StartedAt: time.Now(),
	}

	log := r.logger.WithField("case", c.Name)
	log.Info(ctx, "executing case", map[string]interface{}{
		"url":     c.Config.URL,
		"browser": c.Config.Browser,
		"delay":   c.Config.Delay.String(),
	})

	if err := c.Validate(); err != nil {
		return r.fail(ctx, result, fmt.Errorf("invalid case: %w", err))
	}

	runID, err := r.recordStart(ctx, suiteName, c)
	if err != nil {
		return r.fail(ctx, result, err)
	}
	result.RunID = runID

	sess, err := r.driver.OpenSession(ctx, c.Config.URL, c.Config.Browser)
	if err != nil {
		return r.fail(ctx, result, err)
	}
	if !c.KeepOpen {
		defer func() {
			if err := sess.Close(); err != nil {
				log.Warn(ctx, "failed to close session", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}()
	}

	if err := sess.Maximize(ctx); err != nil {
		return r.fail(ctx, result, err)
	}

	if err := sess.SetCommandDelay(ctx, c.Config.Delay); err != nil {
		return r.fail(ctx, result, err)
	}

	img, err := sess.CaptureScreenshot(ctx)
	if err != nil {
		return r.fail(ctx, result, err)
	}

	if err := storage.UploadBytes(ctx, r.storage, c.ScreenshotFile, img); err != nil {
		return r.fail(ctx, result, fmt.Errorf("failed to write screenshot: %w", err))
	}
	result.ScreenshotPath = c.ScreenshotFile

	if err := r.recordArtifact(ctx, runID, c.ScreenshotFile, int64(len(img))); err != nil {
		return r.fail(ctx, result, err)
	}

	result.Status = run.StatusPassed
	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)

	if r.runStore != nil {
		if err := r.runStore.Complete(ctx, runID, run.StatusPassed, ""); err != nil {
			log.Error(ctx, "failed to record completion", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	log.Info(ctx, "case passed", map[string]interface{}{
		"duration":   result.Duration.String(),
		"screenshot": result.ScreenshotPath,
	})

	return result
}

// recordStart creates and starts the run record. Returns uuid.Nil when
// recording is disabled.
func (r *Runner) recordStart(ctx context.Context, suiteName string, c suite.Case) (uuid.UUID, error) {
	if r.runStore == nil {
		return uuid.Nil, nil
	}

	rec := &run.Run{
		SuiteName:   suiteName,
		CaseName:    c.Name,
		TargetURL:   c.Config.URL,
		Browser:     c.Config.Browser,
		DelayMillis: c.Config.Delay.Milliseconds(),
	}
	if err := r.runStore.Create(ctx, rec); err != nil {
		return uuid.Nil, fmt.Errorf("failed to record run: %w", err)
	}
	if err := r.runStore.Start(ctx, rec.ID); err != nil {
		return rec.ID, fmt.Errorf("failed to start run: %w", err)
	}
	return rec.ID, nil
}

func (r *Runner) recordArtifact(ctx context.Context, runID uuid.UUID, path string, size int64) error {
	if r.artifactStore == nil || runID == uuid.Nil {
		return nil
	}

	a := &run.Artifact{
		RunID:        runID,
		Kind:         run.ArtifactKindScreenshot,
		ArtifactPath: path,
		FileName:     path,
		FileSize:     size,
		MimeType:     "image/png",
	}
	if err := r.artifactStore.Create(ctx, a); err != nil {
		return fmt.Errorf("failed to record artifact: %w", err)
	}
	return nil
}

// fail finalizes a result and marks the recorded run failed.
func (r *Runner) fail(ctx context.Context, result *Result, err error) *Result {
	result.Status = run.StatusFailed
	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)
	result.Error = err.Error()
	result.err = err

	r.logger.Error(ctx, "case failed", map[string]interface{}{
		"case":  result.CaseName,
		"error": err.Error(),
	})

	if r.runStore != nil && result.RunID != uuid.Nil {
		if cerr := r.runStore.Complete(ctx, result.RunID, run.StatusFailed, err.Error()); cerr != nil {
			r.logger.Error(ctx, "failed to record failure", map[string]interface{}{
				"run_id": result.RunID,
				"error":  cerr.Error(),
			})
		}
	}

	return result
}
