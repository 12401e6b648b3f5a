package run

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrRunNotFound is returned when a run is not found.
	ErrRunNotFound = errors.New("run not found")

	// ErrInvalidCaseName is returned when case_name is not set.
	ErrInvalidCaseName = errors.New("case_name is required")

	// ErrInvalidTargetURL is returned when target_url is not set.
	ErrInvalidTargetURL = errors.New("target_url is required")

	// ErrInvalidBrowser is returned when browser is not set.
	ErrInvalidBrowser = errors.New("browser is required")

	// ErrInvalidStatus is returned when status is invalid.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrRunNotRunning is returned when trying to complete a run that's not running.
	ErrRunNotRunning = errors.New("run is not running")

	// ErrRunAlreadyStarted is returned when trying to start an already started run.
	ErrRunAlreadyStarted = errors.New("run already started")
)

// Status represents the status of a run.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusPassed, StatusFailed:
		return true
	default:
		return false
	}
}

// IsFinal checks if the status is a final status (can't be changed).
func (s Status) IsFinal() bool {
	return s == StatusPassed || s == StatusFailed
}

// Run represents one execution of a case against a browser session.
type Run struct {
	ID          uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	SuiteName   string     `json:"suite_name" gorm:"type:varchar(255);index:idx_suite_name"`
	CaseName    string     `json:"case_name" gorm:"type:varchar(255);not null;index:idx_case_name"`
	TargetURL   string     `json:"target_url" gorm:"type:varchar(2048);not null"`
	Browser     string     `json:"browser" gorm:"type:varchar(64);not null"`
	DelayMillis int64      `json:"delay_millis" gorm:"not null;default:0"`
	Status      Status     `json:"status" gorm:"type:varchar(20);not null;default:'pending';index:idx_status"`
	Notes       string     `json:"notes" gorm:"type:text"`
	StartedAt   *time.Time `json:"started_at,omitempty" gorm:"index:idx_started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating a new run
func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Validate checks if the run has valid required fields.
func (r *Run) Validate() error {
	if r.CaseName == "" {
		return ErrInvalidCaseName
	}
	if r.TargetURL == "" {
		return ErrInvalidTargetURL
	}
	if r.Browser == "" {
		return ErrInvalidBrowser
	}
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Delay returns the configured inter-command delay.
func (r *Run) Delay() time.Duration {
	return time.Duration(r.DelayMillis) * time.Millisecond
}

// Start sets the started_at timestamp and changes status to running.
// Returns an error if the run has already been started.
func (r *Run) Start() error {
	if r.StartedAt != nil {
		return ErrRunAlreadyStarted
	}
	now := time.Now()
	r.StartedAt = &now
	r.Status = StatusRunning
	return nil
}

// Complete sets the completed_at timestamp and final status.
// Returns an error if the run is not currently running.
func (r *Run) Complete(status Status, notes string) error {
	if r.Status != StatusRunning {
		return ErrRunNotRunning
	}
	if !status.IsFinal() {
		return ErrInvalidStatus
	}
	now := time.Now()
	r.CompletedAt = &now
	r.Status = status
	if notes != "" {
		r.Notes = notes
	}
	return nil
}
