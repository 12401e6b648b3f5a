package run

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hairizuan-noorazman/browser-smoke/logger"
	"github.com/hairizuan-noorazman/browser-smoke/testutil"
)

// setupTestStore creates a test database and run stores for testing.
func setupTestStore(t *testing.T) (*gorm.DB, Store, ArtifactStore) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &Run{}, &Artifact{})

	log := logger.NewTestLogger()
	store := NewMySQLStore(db, log)
	artifactStore := NewMySQLArtifactStore(db, log)

	return db, store, artifactStore
}

// createRun creates a run with default values.
func createRun(caseName string, status Status) *Run {
	return &Run{
		SuiteName: "smoke",
		CaseName:  caseName,
		TargetURL: "https://example.com",
		Browser:   "headless-chrome",
		Status:    status,
	}
}

// createArtifact creates a run artifact with default values.
func createArtifact(runID uuid.UUID, kind ArtifactKind, path, fileName string, size int64) *Artifact {
	return &Artifact{
		RunID:        runID,
		Kind:         kind,
		ArtifactPath: path,
		FileName:     fileName,
		FileSize:     size,
		MimeType:     "image/png",
	}
}
