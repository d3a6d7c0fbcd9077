package service

import (
	"context"
	"log"
	"time"

	"bluenest/internal/model"
	"bluenest/internal/repository"
)

// streakLookbackDays bounds how far back the streak computation walks.
const streakLookbackDays = 60

// MetricsService is the aggregation job behind the dashboard_metrics table:
// per-owner completion rate, streak and rollover count, one snapshot per day.
type MetricsService struct {
	taskRepo     *repository.TaskRepository
	rolloverRepo *repository.RolloverRepository
	metricRepo   *repository.MetricRepository
}

func NewMetricsService(taskRepo *repository.TaskRepository, rolloverRepo *repository.RolloverRepository, metricRepo *repository.MetricRepository) *MetricsService {
	return &MetricsService{taskRepo: taskRepo, rolloverRepo: rolloverRepo, metricRepo: metricRepo}
}

// Snapshot computes and upserts the owner's metrics for a day. The completion
// rate is skipped for days with no tasks rather than recorded as zero.
func (s *MetricsService) Snapshot(ctx context.Context, owner string, day time.Time) error {
	target := model.Day(day)

	tasks, err := s.taskRepo.ListByOwnerAndDate(ctx, owner, target)
	if err != nil {
		return err
	}
	if len(tasks) > 0 {
		done := 0
		for _, task := range tasks {
			if task.Completed {
				done++
			}
		}
		rate := float64(done) / float64(len(tasks)) * 100
		if err := s.metricRepo.Upsert(ctx, owner, model.MetricCompletionRate, rate, target); err != nil {
			return err
		}
	}

	streak, err := s.streak(ctx, owner, target)
	if err != nil {
		return err
	}
	if err := s.metricRepo.Upsert(ctx, owner, model.MetricStreakDays, float64(streak), target); err != nil {
		return err
	}

	rollovers, err := s.rolloverRepo.CountForTarget(ctx, owner, target)
	if err != nil {
		return err
	}
	return s.metricRepo.Upsert(ctx, owner, model.MetricRolloverCount, float64(rollovers), target)
}

// SnapshotAll runs Snapshot for every owner, logging failures and moving on.
func (s *MetricsService) SnapshotAll(ctx context.Context, owners []string, day time.Time) {
	for _, owner := range owners {
		if err := s.Snapshot(ctx, owner, day); err != nil {
			log.Printf("metrics snapshot for %s: %v", owner, err)
		}
	}
}

// streak counts consecutive days ending at day on which the owner had at
// least one task and completed all of them.
func (s *MetricsService) streak(ctx context.Context, owner string, day time.Time) (int, error) {
	streak := 0
	for i := 0; i < streakLookbackDays; i++ {
		current := day.AddDate(0, 0, -i)
		tasks, err := s.taskRepo.ListByOwnerAndDate(ctx, owner, current)
		if err != nil {
			return 0, err
		}
		if len(tasks) == 0 {
			break
		}
		allDone := true
		for _, task := range tasks {
			if !task.Completed {
				allDone = false
				break
			}
		}
		if !allDone {
			break
		}
		streak++
	}
	return streak, nil
}
