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

// TaskRepository is the task store: pure data access keyed by owner and date,
// no business rules.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task, assigning an id if missing and appending it at the
// end of its owner+date group (position = max+1).
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.DueDate != nil {
		day := model.Day(*task.DueDate)
		task.DueDate = &day
	}

	position, err := r.nextPosition(ctx, task.Owner, task.DueDate)
	if err != nil {
		return err
	}
	task.Position = position

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// nextPosition returns max(position)+1 within the owner+date group. Deletions
// leave gaps; only ordering is guaranteed, not density.
func (r *TaskRepository) nextPosition(ctx context.Context, owner string, due *time.Time) (int, error) {
	query := r.db.WithContext(ctx).Model(&model.Task{}).Where("owner = ?", owner)
	if due != nil {
		query = query.Where("due_date = ?", *due)
	} else {
		query = query.Where("due_date IS NULL")
	}

	var max int
	if err := query.Select("COALESCE(MAX(position), 0)").Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("next position: %w", err)
	}
	return max + 1, nil
}

// ListByOwnerAndDate returns the owner's tasks due on the given day, in
// display order.
func (r *TaskRepository) ListByOwnerAndDate(ctx context.Context, owner string, day time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("owner = ? AND due_date = ?", owner, model.Day(day)).
		Order("position ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListByOwnerAndScope returns the owner's tasks in a non-daily scope, in
// display order.
func (r *TaskRepository) ListByOwnerAndScope(ctx context.Context, owner string, scope model.Scope) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("owner = ? AND scope = ?", owner, scope).
		Order("position ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks by scope: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find task %s: %w", id, ErrTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find task %s: %w", id, err)
	}
	return &task, nil
}

// Save persists a mutated task row. UpdatedAt is refreshed by the ORM.
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// Delete removes a task by id. It reports whether a row was actually deleted;
// deleting an absent id is not an error.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{})
	if result.Error != nil {
		return false, fmt.Errorf("delete task: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ReassignDate moves a task to a new due date. Reassigning to the date the
// task already has is a no-op; the rollover scheduler relies on that to make
// duplicate visits harmless.
func (r *TaskRepository) ReassignDate(ctx context.Context, id uuid.UUID, newDate time.Time) (*model.Task, error) {
	task, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	day := model.Day(newDate)
	if task.DueDate != nil && task.DueDate.Equal(day) {
		return task, nil
	}

	task.DueDate = &day
	if err := r.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// StaleDaily returns incomplete daily tasks with auto-rollover enabled whose
// due date lies before the given day.
func (r *TaskRepository) StaleDaily(ctx context.Context, owner string, before time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("owner = ? AND scope = ? AND completed = ? AND auto_rollover = ? AND due_date IS NOT NULL AND due_date < ?",
			owner, model.ScopeDaily, false, true, model.Day(before)).
		Order("due_date ASC, position ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list stale tasks: %w", err)
	}
	return tasks, nil
}
