package run

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrArtifactNotFound is returned when an artifact is not found.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrInvalidArtifactKind is returned when artifact kind is invalid.
	ErrInvalidArtifactKind = errors.New("invalid artifact kind")

	// ErrInvalidRunID is returned when run_id is not set.
	ErrInvalidRunID = errors.New("run_id is required")

	// ErrInvalidArtifactPath is returned when artifact_path is empty.
	ErrInvalidArtifactPath = errors.New("artifact_path is required")

	// ErrInvalidFileName is returned when file_name is empty.
	ErrInvalidFileName = errors.New("file_name is required")
)

// ArtifactKind represents the kind of artifact a run produced.
type ArtifactKind string

const (
	ArtifactKindScreenshot ArtifactKind = "screenshot"
	ArtifactKindLog        ArtifactKind = "log"
	ArtifactKindReport     ArtifactKind = "report"
)

// IsValid checks if the artifact kind is valid.
func (k ArtifactKind) IsValid() bool {
	switch k {
	case ArtifactKindScreenshot, ArtifactKindLog, ArtifactKindReport:
		return true
	default:
		return false
	}
}

// Artifact represents a file produced by a run, stored in blob storage.
type Artifact struct {
	ID           uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	RunID        uuid.UUID    `json:"run_id" gorm:"type:char(36);not null;index:idx_run_id"`
	Kind         ArtifactKind `json:"kind" gorm:"type:varchar(20);not null;index:idx_kind"`
	ArtifactPath string       `json:"artifact_path" gorm:"type:varchar(512);not null"`
	FileName     string       `json:"file_name" gorm:"type:varchar(255);not null"`
	FileSize     int64        `json:"file_size" gorm:"not null"`
	MimeType     string       `json:"mime_type,omitempty" gorm:"type:varchar(128)"`
	CreatedAt    time.Time    `json:"created_at"`
}

// BeforeCreate hook to generate UUID before creating a new artifact
func (a *Artifact) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Validate checks if the artifact has valid required fields.
func (a *Artifact) Validate() error {
	if a.RunID == uuid.Nil {
		return ErrInvalidRunID
	}
	if !a.Kind.IsValid() {
		return ErrInvalidArtifactKind
	}
	if a.ArtifactPath == "" {
		return ErrInvalidArtifactPath
	}
	if a.FileName == "" {
		return ErrInvalidFileName
	}
	return nil
}
