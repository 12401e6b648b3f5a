package run

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for run persistence operations.
type Store interface {
	// Create creates a new run in the store.
	Create(ctx context.Context, run *Run) error

	// GetByID retrieves a run by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Run, error)

	// Update updates a run with the given setters.
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error

	// List retrieves a paginated list of runs, most recent first.
	List(ctx context.Context, limit, offset int) ([]*Run, error)

	// ListByCase retrieves a paginated list of runs for a specific case name.
	ListByCase(ctx context.Context, caseName string, limit, offset int) ([]*Run, error)

	// Count returns the total number of runs.
	Count(ctx context.Context) (int64, error)

	// Start marks a run as started (sets started_at, changes status to running).
	Start(ctx context.Context, id uuid.UUID) error

	// Complete marks a run as completed (sets completed_at, final status, optional notes).
	Complete(ctx context.Context, id uuid.UUID, status Status, notes string) error
}

// ArtifactStore defines the interface for run artifact persistence.
type ArtifactStore interface {
	// Create creates a new artifact record.
	Create(ctx context.Context, artifact *Artifact) error

	// GetByID retrieves an artifact by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Artifact, error)

	// ListByRun retrieves all artifacts for a run.
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*Artifact, error)

	// Delete removes an artifact record.
	Delete(ctx context.Context, id uuid.UUID) error
}

// UpdateSetter is a function that updates a run field.
type UpdateSetter func(*Run) error
