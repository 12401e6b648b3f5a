package run

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hairizuan-noorazman/browser-smoke/logger"
)

// MySQLStore implements the Store interface using GORM.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new GORM-backed run store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new run in the database.
func (s *MySQLStore) Create(ctx context.Context, run *Run) error {
	// Ensure default status is set before validation
	if run.Status == "" {
		run.Status = StatusPending
	}

	if err := run.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		s.logger.Error(ctx, "failed to create run", map[string]interface{}{
			"error":     err.Error(),
			"case_name": run.CaseName,
			"browser":   run.Browser,
		})
		return err
	}

	s.logger.Info(ctx, "run created", map[string]interface{}{
		"run_id":    run.ID,
		"case_name": run.CaseName,
	})

	return nil
}

// GetByID retrieves a run by its ID.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&run).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		s.logger.Error(ctx, "failed to get run by ID", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id,
		})
		return nil, err
	}

	return &run, nil
}

// Update updates a run with the given setters.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	run, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(run); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Save(run).Error; err != nil {
		s.logger.Error(ctx, "failed to update run", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id,
		})
		return err
	}

	s.logger.Info(ctx, "run updated", map[string]interface{}{
		"run_id": id,
	})

	return nil
}

// List retrieves a paginated list of runs, most recent first.
func (s *MySQLStore) List(ctx context.Context, limit, offset int) ([]*Run, error) {
	var runs []*Run
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list runs", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	return runs, nil
}

// ListByCase retrieves a paginated list of runs for a specific case name.
func (s *MySQLStore) ListByCase(ctx context.Context, caseName string, limit, offset int) ([]*Run, error) {
	var runs []*Run
	err := s.db.WithContext(ctx).
		Where("case_name = ?", caseName).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list runs by case", map[string]interface{}{
			"error":     err.Error(),
			"case_name": caseName,
		})
		return nil, err
	}

	return runs, nil
}

// Count returns the total number of runs.
func (s *MySQLStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Run{}).Count(&count).Error; err != nil {
		s.logger.Error(ctx, "failed to count runs", map[string]interface{}{
			"error": err.Error(),
		})
		return 0, err
	}
	return count, nil
}

// Start marks a run as started.
func (s *MySQLStore) Start(ctx context.Context, id uuid.UUID) error {
	run, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := run.Start(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Save(run).Error; err != nil {
		s.logger.Error(ctx, "failed to start run", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id,
		})
		return err
	}

	s.logger.Info(ctx, "run started", map[string]interface{}{
		"run_id": id,
	})

	return nil
}

// Complete marks a run as completed with a final status.
func (s *MySQLStore) Complete(ctx context.Context, id uuid.UUID, status Status, notes string) error {
	run, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := run.Complete(status, notes); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Save(run).Error; err != nil {
		s.logger.Error(ctx, "failed to complete run", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id,
		})
		return err
	}

	s.logger.Info(ctx, "run completed", map[string]interface{}{
		"run_id": id,
		"status": status,
	})

	return nil
}

// MySQLArtifactStore implements the ArtifactStore interface using GORM.
type MySQLArtifactStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLArtifactStore creates a new GORM-backed artifact store.
func NewMySQLArtifactStore(db *gorm.DB, log logger.Logger) *MySQLArtifactStore {
	return &MySQLArtifactStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new artifact record.
func (s *MySQLArtifactStore) Create(ctx context.Context, artifact *Artifact) error {
	if err := artifact.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(artifact).Error; err != nil {
		s.logger.Error(ctx, "failed to create artifact", map[string]interface{}{
			"error":     err.Error(),
			"run_id":    artifact.RunID,
			"file_name": artifact.FileName,
		})
		return err
	}

	s.logger.Info(ctx, "artifact created", map[string]interface{}{
		"artifact_id": artifact.ID,
		"run_id":      artifact.RunID,
		"kind":        artifact.Kind,
	})

	return nil
}

// GetByID retrieves an artifact by its ID.
func (s *MySQLArtifactStore) GetByID(ctx context.Context, id uuid.UUID) (*Artifact, error) {
	var artifact Artifact
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&artifact).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArtifactNotFound
		}
		s.logger.Error(ctx, "failed to get artifact by ID", map[string]interface{}{
			"error":       err.Error(),
			"artifact_id": id,
		})
		return nil, err
	}

	return &artifact, nil
}

// ListByRun retrieves all artifacts for a run.
func (s *MySQLArtifactStore) ListByRun(ctx context.Context, runID uuid.UUID) ([]*Artifact, error) {
	var artifacts []*Artifact
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("created_at ASC").
		Find(&artifacts).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list artifacts by run", map[string]interface{}{
			"error":  err.Error(),
			"run_id": runID,
		})
		return nil, err
	}

	return artifacts, nil
}

// Delete removes an artifact record.
func (s *MySQLArtifactStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&Artifact{}, "id = ?", id)
	if result.Error != nil {
		s.logger.Error(ctx, "failed to delete artifact", map[string]interface{}{
			"error":       result.Error.Error(),
			"artifact_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArtifactNotFound
	}

	s.logger.Info(ctx, "artifact deleted", map[string]interface{}{
		"artifact_id": id,
	})

	return nil
}
