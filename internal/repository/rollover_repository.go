package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bluenest/internal/model"
)

// RolloverRepository manages the rollover audit trail and per-owner rollover
// preferences. Records are insert-only.
type RolloverRepository struct {
	db *gorm.DB
}

func NewRolloverRepository(db *gorm.DB) *RolloverRepository {
	return &RolloverRepository{db: db}
}

// RecordExists reports whether the (owner, task, target date) hop has already
// been processed.
func (r *RolloverRepository) RecordExists(ctx context.Context, owner string, taskID uuid.UUID, target time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.RolloverRecord{}).
		Where("owner = ? AND task_id = ? AND target_date = ?", owner, taskID, model.Day(target)).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check rollover record: %w", err)
	}
	return count > 0, nil
}

// CreateRecord writes one audit entry. A duplicate key error means a
// concurrent run already wrote this hop and is reported as such.
func (r *RolloverRepository) CreateRecord(ctx context.Context, record *model.RolloverRecord) error {
	record.SourceDate = model.Day(record.SourceDate)
	record.TargetDate = model.Day(record.TargetDate)
	if record.ProcessedAt.IsZero() {
		record.ProcessedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("create rollover record: %w", err)
	}
	return nil
}

// HistoryForTask returns the task's rollover chain, oldest hop first.
func (r *RolloverRepository) HistoryForTask(ctx context.Context, owner string, taskID uuid.UUID) ([]model.RolloverRecord, error) {
	var records []model.RolloverRecord
	if err := r.db.WithContext(ctx).
		Where("owner = ? AND task_id = ?", owner, taskID).
		Order("target_date ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list rollover history: %w", err)
	}
	return records, nil
}

// CountForTarget counts hops that landed on the given day for the owner.
func (r *RolloverRepository) CountForTarget(ctx context.Context, owner string, target time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.RolloverRecord{}).
		Where("owner = ? AND target_date = ?", owner, model.Day(target)).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count rollover records: %w", err)
	}
	return count, nil
}

// TaskRolloverCount is one row of the per-task hop tally.
type TaskRolloverCount struct {
	TaskID uuid.UUID
	Count  int64
}

// CountsByTask tallies hops per task for an owner, most-rolled first.
func (r *RolloverRepository) CountsByTask(ctx context.Context, owner string) ([]TaskRolloverCount, error) {
	var counts []TaskRolloverCount
	if err := r.db.WithContext(ctx).Model(&model.RolloverRecord{}).
		Select("task_id, COUNT(*) AS count").
		Where("owner = ?", owner).
		Group("task_id").
		Order("count DESC").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count rollovers by task: %w", err)
	}
	return counts, nil
}

// PreferenceFor finds or creates the owner's rollover preference with defaults.
func (r *RolloverRepository) PreferenceFor(ctx context.Context, owner string) (*model.RolloverPreference, error) {
	var pref model.RolloverPreference
	db := r.db.WithContext(ctx)
	err := db.Where("owner = ?", owner).First(&pref).Error
	switch {
	case err == nil:
		return &pref, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		pref = model.RolloverPreference{Owner: owner, Enabled: true, MaxChainDays: 365}
		if err := db.Create(&pref).Error; err != nil {
			return nil, fmt.Errorf("create rollover preference: %w", err)
		}
		return &pref, nil
	default:
		return nil, fmt.Errorf("find rollover preference: %w", err)
	}
}

// SavePreference persists a mutated preference row.
func (r *RolloverRepository) SavePreference(ctx context.Context, pref *model.RolloverPreference) error {
	if err := r.db.WithContext(ctx).Save(pref).Error; err != nil {
		return fmt.Errorf("save rollover preference: %w", err)
	}
	return nil
}
