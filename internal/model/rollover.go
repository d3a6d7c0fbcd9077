package model

import (
	"time"

	"github.com/google/uuid"
)

// RolloverRecord is the audit entry written for every date hop a task makes.
// The unique index makes a second attempt at the same hop a constraint
// violation, which is what keeps concurrent scheduler runs idempotent.
type RolloverRecord struct {
	ID          uint      `gorm:"primaryKey"`
	Owner       string    `gorm:"index:idx_rollover_once,unique"`
	TaskID      uuid.UUID `gorm:"type:uuid;index:idx_rollover_once,unique"`
	SourceDate  time.Time
	TargetDate  time.Time `gorm:"index:idx_rollover_once,unique"`
	ProcessedAt time.Time
}

// RolloverPreference holds an owner's rollover settings. Read at scheduler-run
// time, so flipping Enabled off stops future rollovers without undoing past ones.
type RolloverPreference struct {
	ID           uint   `gorm:"primaryKey"`
	Owner        string `gorm:"uniqueIndex"`
	Enabled      bool
	MaxChainDays int    `gorm:"default:365"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
