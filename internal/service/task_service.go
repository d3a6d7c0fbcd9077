package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"bluenest/internal/model"
	"bluenest/internal/repository"
)

// maxContentLen caps task content length after trimming.
const maxContentLen = 500

// TaskService owns the create/edit/complete/delete contract for tasks.
type TaskService struct {
	taskRepo    *repository.TaskRepository
	rolloverSvc *RolloverService
	owners      []string
}

func NewTaskService(taskRepo *repository.TaskRepository, rolloverSvc *RolloverService, owners []string) *TaskService {
	return &TaskService{taskRepo: taskRepo, rolloverSvc: rolloverSvc, owners: owners}
}

// AddTask validates and stores a new task for the owner.
func (s *TaskService) AddTask(ctx context.Context, owner, content string, scope model.Scope, due *time.Time) (*model.Task, error) {
	if err := s.checkOwner(owner); err != nil {
		return nil, err
	}
	trimmed, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	if !scope.Valid() {
		return nil, &ValidationError{Field: "scope", Reason: "must be daily, quarterly or yearly"}
	}
	if scope == model.ScopeDaily && due == nil {
		return nil, &ValidationError{Field: "due_date", Reason: "required for daily tasks"}
	}

	task := model.Task{
		Owner:        owner,
		Content:      trimmed,
		Scope:        scope,
		DueDate:      due,
		AutoRollover: true,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// EditTask replaces the task's content, subject to the same validation as
// AddTask.
func (s *TaskService) EditTask(ctx context.Context, id uuid.UUID, content string) (*model.Task, error) {
	trimmed, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Content = trimmed
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ToggleComplete flips the task's completed flag. The read-modify-write is
// deliberately unguarded: two simultaneous toggles can lose one transition,
// which is accepted for one-user-one-click usage.
func (s *TaskService) ToggleComplete(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Completed = !task.Completed
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// SetAutoRollover sets the task's rollover flag. This is the only operation
// that touches it.
func (s *TaskService) SetAutoRollover(ctx context.Context, id uuid.UUID, enabled bool) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	task.AutoRollover = enabled
	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task. Deleting an id that no longer exists returns
// false, not an error: idempotent deletion is the user-visible contract.
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.taskRepo.Delete(ctx, id)
}

// GetTask returns a single task by id.
func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, id)
}

// TasksForDay returns the owner's view of a day. Requesting a view runs the
// rollover scheduler for the owner first, so the first read after midnight
// carries yesterday's unfinished tasks forward.
func (s *TaskService) TasksForDay(ctx context.Context, owner string, day time.Time) ([]model.Task, error) {
	if err := s.checkOwner(owner); err != nil {
		return nil, err
	}
	// Rollover only crosses boundaries that have actually passed. Viewing a
	// future day must not drag today's still-pending tasks forward.
	target := model.Day(day)
	if today := model.Day(time.Now()); target.After(today) {
		target = today
	}
	if _, err := s.rolloverSvc.Run(ctx, owner, target); err != nil {
		return nil, err
	}
	return s.taskRepo.ListByOwnerAndDate(ctx, owner, day)
}

// TasksInScope lists the owner's quarterly or yearly tasks.
func (s *TaskService) TasksInScope(ctx context.Context, owner string, scope model.Scope) ([]model.Task, error) {
	if err := s.checkOwner(owner); err != nil {
		return nil, err
	}
	if !scope.Valid() || scope == model.ScopeDaily {
		return nil, &ValidationError{Field: "scope", Reason: "must be quarterly or yearly"}
	}
	return s.taskRepo.ListByOwnerAndScope(ctx, owner, scope)
}

func (s *TaskService) checkOwner(owner string) error {
	for _, known := range s.owners {
		if known == owner {
			return nil
		}
	}
	return &ValidationError{Field: "owner", Reason: "unknown owner " + owner}
}

func validateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(trimmed) > maxContentLen {
		return "", &ValidationError{Field: "content", Reason: "must be at most 500 characters"}
	}
	return trimmed, nil
}
