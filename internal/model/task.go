package model

import (
	"time"

	"github.com/google/uuid"
)

// Scope is the planning horizon of a task.
type Scope string

const (
	ScopeDaily     Scope = "daily"
	ScopeQuarterly Scope = "quarterly"
	ScopeYearly    Scope = "yearly"
)

// Valid reports whether s is one of the known scopes.
func (s Scope) Valid() bool {
	switch s {
	case ScopeDaily, ScopeQuarterly, ScopeYearly:
		return true
	}
	return false
}

// Task represents a single item in the planner. Rollover shifts DueDate in
// place; ID never changes across a rollover.
type Task struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Owner        string    `gorm:"index:idx_tasks_owner_due"`
	Content      string
	Scope        Scope      `gorm:"index"`
	DueDate      *time.Time `gorm:"index:idx_tasks_owner_due"`
	Completed    bool
	Position     int
	AutoRollover bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Day truncates t to midnight UTC. Due dates and rollover dates are
// normalized through it so date equality is plain time equality.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
