package models

import "time"

// Lifecycle holds the standard timestamps of soft-deletable entities.
type Lifecycle struct {
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// IsDeleted reports whether the row has been soft-deleted.
func (l Lifecycle) IsDeleted() bool { return l.DeletedAt != nil }

// MarkDeleted stamps deleted_at and updated_at.
func (l *Lifecycle) MarkDeleted(at time.Time) {
	l.DeletedAt = &at
	l.UpdatedAt = at
}

// Touch refreshes updated_at.
func (l *Lifecycle) Touch(at time.Time) { l.UpdatedAt = at }

// NewLifecycle returns timestamps for a row created at the given instant.
func NewLifecycle(at time.Time) Lifecycle {
	return Lifecycle{CreatedAt: at, UpdatedAt: at}
}
