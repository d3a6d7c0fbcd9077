package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"bluenest/internal/model"
	"bluenest/internal/repository"
)

// RolloverService carries incomplete daily tasks forward across date
// boundaries, exactly once per (owner, task, target date).
type RolloverService struct {
	taskRepo     *repository.TaskRepository
	rolloverRepo *repository.RolloverRepository
	maxChainDays int
}

// RolloverResult summarizes one scheduler run.
type RolloverResult struct {
	Processed  int
	RolledOver int
	Skipped    int
}

func NewRolloverService(taskRepo *repository.TaskRepository, rolloverRepo *repository.RolloverRepository, maxChainDays int) *RolloverService {
	if maxChainDays <= 0 {
		maxChainDays = 365
	}
	return &RolloverService{
		taskRepo:     taskRepo,
		rolloverRepo: rolloverRepo,
		maxChainDays: maxChainDays,
	}
}

// Run migrates the owner's stale daily tasks up to today, one day hop at a
// time, writing one audit record per hop. Safe to invoke concurrently: a hop
// whose record already exists is skipped, and reassigning an already-equal
// date is a no-op. A storage error aborts the batch without recording the
// failed hop, so a retry picks up exactly where this run stopped.
func (s *RolloverService) Run(ctx context.Context, owner string, today time.Time) (RolloverResult, error) {
	var result RolloverResult
	day := model.Day(today)

	pref, err := s.rolloverRepo.PreferenceFor(ctx, owner)
	if err != nil {
		return result, err
	}
	if !pref.Enabled {
		return result, nil
	}

	maxHops := pref.MaxChainDays
	if maxHops <= 0 || maxHops > s.maxChainDays {
		maxHops = s.maxChainDays
	}

	stale, err := s.taskRepo.StaleDaily(ctx, owner, day)
	if err != nil {
		return result, err
	}

	for _, task := range stale {
		result.Processed++
		moved, err := s.chainForward(ctx, owner, task, day, maxHops)
		if err != nil {
			return result, err
		}
		if moved {
			result.RolledOver++
		} else {
			result.Skipped++
		}
	}

	if result.RolledOver > 0 {
		log.Printf("[info] rollover owner=%s target=%s moved=%d", owner, day.Format("2006-01-02"), result.RolledOver)
	}
	return result, nil
}

// chainForward walks a task's due date toward today one day at a time. The
// hop cap guards against a corrupted date far in the past.
func (s *RolloverService) chainForward(ctx context.Context, owner string, task model.Task, today time.Time, maxHops int) (bool, error) {
	current := model.Day(*task.DueDate)
	moved := false

	for hops := 0; current.Before(today) && hops < maxHops; hops++ {
		next := current.AddDate(0, 0, 1)

		done, err := s.rolloverRepo.RecordExists(ctx, owner, task.ID, next)
		if err != nil {
			return moved, err
		}
		if !done {
			if _, err := s.taskRepo.ReassignDate(ctx, task.ID, next); err != nil {
				return moved, err
			}
			// Record only after the date reassignment succeeded. If this
			// write fails the task is still correctly dated and the retry's
			// reassign is a no-op.
			record := model.RolloverRecord{
				Owner:      owner,
				TaskID:     task.ID,
				SourceDate: current,
				TargetDate: next,
			}
			if err := s.rolloverRepo.CreateRecord(ctx, &record); err != nil {
				return moved, err
			}
			moved = true
		}
		current = next
	}

	return moved, nil
}

// History returns the task's rollover chain, oldest hop first.
func (s *RolloverService) History(ctx context.Context, owner string, taskID uuid.UUID) ([]model.RolloverRecord, error) {
	return s.rolloverRepo.HistoryForTask(ctx, owner, taskID)
}

// RolloverInsights aggregates the audit trail for one owner.
type RolloverInsights struct {
	TotalHops      int64
	DistinctTasks  int
	MostRolled     *model.Task
	MostRolledHops int64
}

// Insights reports how much the owner's tasks keep slipping. The most-rolled
// task may have been deleted since; it is then omitted from the result.
func (s *RolloverService) Insights(ctx context.Context, owner string) (*RolloverInsights, error) {
	counts, err := s.rolloverRepo.CountsByTask(ctx, owner)
	if err != nil {
		return nil, err
	}

	insights := &RolloverInsights{DistinctTasks: len(counts)}
	for _, c := range counts {
		insights.TotalHops += c.Count
	}
	if len(counts) > 0 {
		top := counts[0]
		task, err := s.taskRepo.FindByID(ctx, top.TaskID)
		if err == nil {
			insights.MostRolled = task
			insights.MostRolledHops = top.Count
		}
	}
	return insights, nil
}

// SetEnabled flips the owner's rollover preference. Disabling stops future
// rollovers but never undoes ones already performed.
func (s *RolloverService) SetEnabled(ctx context.Context, owner string, enabled bool) error {
	pref, err := s.rolloverRepo.PreferenceFor(ctx, owner)
	if err != nil {
		return err
	}
	pref.Enabled = enabled
	return s.rolloverRepo.SavePreference(ctx, pref)
}
