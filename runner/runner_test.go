package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuan-noorazman/browser-smoke/driver"
	"github.com/hairizuan-noorazman/browser-smoke/logger"
	"github.com/hairizuan-noorazman/browser-smoke/run"
	"github.com/hairizuan-noorazman/browser-smoke/storage"
	"github.com/hairizuan-noorazman/browser-smoke/suite"
	"github.com/hairizuan-noorazman/browser-smoke/testutil"
)

func defaultCase() suite.Case {
	return suite.Case{
		Name: "staff list case",
		Config: suite.Config{
			URL:     "https://example.com",
			Browser: driver.BrowserHeadlessChrome,
			Delay:   0,
		},
		ScreenshotFile: suite.DefaultScreenshotFile,
	}
}

// setupRunner builds a runner with a fake driver, local blob storage in a
// temp dir, and sqlite-backed stores.
func setupRunner(t *testing.T) (*Runner, *driver.FakeDriver, string, run.Store, run.ArtifactStore) {
	t.Helper()

	d := driver.NewFakeDriver()
	outputDir := t.TempDir()
	blob, err := storage.NewLocalStorage(outputDir)
	require.NoError(t, err)

	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &run.Run{}, &run.Artifact{})
	log := logger.NewTestLogger()
	runStore := run.NewMySQLStore(db, log)
	artifactStore := run.NewMySQLArtifactStore(db, log)

	r := New(d, blob, log, WithStores(runStore, artifactStore))
	return r, d, outputDir, runStore, artifactStore
}

func TestRunner_ExecuteCase_Passes(t *testing.T) {
	ctx := context.Background()
	r, d, outputDir, runStore, artifactStore := setupRunner(t)

	result := r.ExecuteCase(ctx, "smoke", defaultCase())
	require.NoError(t, result.Err())
	assert.Equal(t, run.StatusPassed, result.Status)
	assert.Equal(t, suite.DefaultScreenshotFile, result.ScreenshotPath)

	// Exactly one screenshot file, non-empty
	info, err := os.Stat(filepath.Join(outputDir, suite.DefaultScreenshotFile))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// Driver calls happened in order and the session was closed
	sessions := d.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, []string{
		"open:https://example.com",
		"maximize",
		"delay:0s",
		"screenshot",
		"close",
	}, sessions[0].Calls())

	// Run recorded as passed with one screenshot artifact
	rec, err := runStore.GetByID(ctx, result.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.StatusPassed, rec.Status)
	assert.NotNil(t, rec.StartedAt)
	assert.NotNil(t, rec.CompletedAt)

	artifacts, err := artifactStore.ListByRun(ctx, result.RunID)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, run.ArtifactKindScreenshot, artifacts[0].Kind)
	assert.Equal(t, suite.DefaultScreenshotFile, artifacts[0].FileName)
}

func TestRunner_ExecuteCase_DelayForwardedUnchanged(t *testing.T) {
	ctx := context.Background()
	r, d, _, _, _ := setupRunner(t)

	c := defaultCase()
	c.Config.Delay = 2 * time.Second
	result := r.ExecuteCase(ctx, "smoke", c)
	require.NoError(t, result.Err())

	assert.Equal(t, 2*time.Second, d.Sessions()[0].Delay())
}

func TestRunner_ExecuteCase_UnsupportedBrowser(t *testing.T) {
	ctx := context.Background()
	r, d, outputDir, runStore, _ := setupRunner(t)

	c := defaultCase()
	c.Config.Browser = "netscape"
	result := r.ExecuteCase(ctx, "smoke", c)

	require.Error(t, result.Err())
	assert.ErrorIs(t, result.Err(), driver.ErrUnsupportedBrowser)
	assert.True(t, driver.IsDriverError(result.Err()))
	assert.Equal(t, run.StatusFailed, result.Status)

	// No screenshot written, no session opened
	_, err := os.Stat(filepath.Join(outputDir, suite.DefaultScreenshotFile))
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, d.Sessions())

	// Run recorded as failed
	rec, err := runStore.GetByID(ctx, result.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.StatusFailed, rec.Status)
	assert.NotEmpty(t, rec.Notes)
}

func TestRunner_ExecuteCase_EmptyURL(t *testing.T) {
	ctx := context.Background()
	r, _, outputDir, _, _ := setupRunner(t)

	c := defaultCase()
	c.Config.URL = ""
	result := r.ExecuteCase(ctx, "smoke", c)

	require.Error(t, result.Err())
	assert.Equal(t, run.StatusFailed, result.Status)

	_, err := os.Stat(filepath.Join(outputDir, suite.DefaultScreenshotFile))
	assert.True(t, os.IsNotExist(err))
}

func TestRunner_ExecuteCase_TwiceOverwritesScreenshot(t *testing.T) {
	ctx := context.Background()
	r, d, outputDir, runStore, _ := setupRunner(t)

	first := r.ExecuteCase(ctx, "smoke", defaultCase())
	require.NoError(t, first.Err())

	d.Screenshot = []byte("\x89PNG second image with different size")
	second := r.ExecuteCase(ctx, "smoke", defaultCase())
	require.NoError(t, second.Err())

	// Two independent sessions, both closed
	sessions := d.Sessions()
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].Closed())
	assert.True(t, sessions[1].Closed())

	// Single file, overwritten by the second run
	info, err := os.Stat(filepath.Join(outputDir, suite.DefaultScreenshotFile))
	require.NoError(t, err)
	assert.Equal(t, int64(len(d.Screenshot)), info.Size())

	// Two run rows recorded
	count, err := runStore.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRunner_ExecuteCase_KeepOpen(t *testing.T) {
	ctx := context.Background()
	r, d, _, _, _ := setupRunner(t)

	c := defaultCase()
	c.KeepOpen = true
	result := r.ExecuteCase(ctx, "smoke", c)
	require.NoError(t, result.Err())

	assert.False(t, d.Sessions()[0].Closed())
}

func TestRunner_ExecuteCase_ScreenshotFailure(t *testing.T) {
	ctx := context.Background()
	r, d, outputDir, runStore, artifactStore := setupRunner(t)
	d.ScreenshotErr = &driver.DriverError{Op: "capture screenshot", Err: errors.New("target crashed")}

	result := r.ExecuteCase(ctx, "smoke", defaultCase())
	require.Error(t, result.Err())
	assert.Equal(t, run.StatusFailed, result.Status)
	assert.Empty(t, result.ScreenshotPath)

	_, err := os.Stat(filepath.Join(outputDir, suite.DefaultScreenshotFile))
	assert.True(t, os.IsNotExist(err))

	// Session still closed on failure
	assert.True(t, d.Sessions()[0].Closed())

	rec, err := runStore.GetByID(ctx, result.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.StatusFailed, rec.Status)

	artifacts, err := artifactStore.ListByRun(ctx, result.RunID)
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}

// failingStorage rejects every upload.
type failingStorage struct{}

func (failingStorage) Upload(ctx context.Context, path string, reader io.Reader) error {
	return errors.New("disk full")
}
func (failingStorage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	return nil, storage.ErrFileNotFound
}
func (failingStorage) Delete(ctx context.Context, path string) error { return nil }
func (failingStorage) Exists(ctx context.Context, path string) (bool, error) {
	return false, nil
}
func (failingStorage) GetURL(ctx context.Context, path string) (string, error) {
	return "", storage.ErrFileNotFound
}

func TestRunner_ExecuteCase_UnwritableStorage(t *testing.T) {
	ctx := context.Background()
	d := driver.NewFakeDriver()
	log := logger.NewTestLogger()

	r := New(d, failingStorage{}, log)
	result := r.ExecuteCase(ctx, "smoke", defaultCase())

	require.Error(t, result.Err())
	assert.Equal(t, run.StatusFailed, result.Status)
	assert.Contains(t, result.Error, "failed to write screenshot")
	assert.False(t, driver.IsDriverError(result.Err()))
	assert.True(t, log.ContainsMessage("error", "case failed"))
}

func TestRunner_ExecuteSuite(t *testing.T) {
	ctx := context.Background()
	r, _, _, _, _ := setupRunner(t)

	good := defaultCase()
	bad := defaultCase()
	bad.Name = "bad case"
	bad.Config.Browser = "netscape"
	bad.ScreenshotFile = "bad.png"

	s := suite.Suite{Name: "smoke", Cases: []suite.Case{good, bad}}
	results := r.ExecuteSuite(ctx, s)

	require.Len(t, results, 2)
	assert.Equal(t, run.StatusPassed, results[0].Status)
	assert.Equal(t, run.StatusFailed, results[1].Status)
}

func TestRunner_NoRecording(t *testing.T) {
	ctx := context.Background()
	d := driver.NewFakeDriver()
	outputDir := t.TempDir()
	blob, err := storage.NewLocalStorage(outputDir)
	require.NoError(t, err)

	r := New(d, blob, logger.NewTestLogger())
	result := r.ExecuteCase(ctx, "smoke", defaultCase())

	require.NoError(t, result.Err())
	assert.Equal(t, run.StatusPassed, result.Status)

	// Screenshot still written without stores
	_, err = os.Stat(filepath.Join(outputDir, suite.DefaultScreenshotFile))
	assert.NoError(t, err)
}
