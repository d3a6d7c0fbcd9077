package repository_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bluenest/internal/model"
	"bluenest/internal/repository"
)

func setupTaskRepo(t *testing.T) *repository.TaskRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := repository.NewDB(dsn)
	require.NoError(t, err)
	return repository.NewTaskRepository(db)
}

func dailyTask(owner, content string, due time.Time) *model.Task {
	day := model.Day(due)
	return &model.Task{
		Owner:        owner,
		Content:      content,
		Scope:        model.ScopeDaily,
		DueDate:      &day,
		AutoRollover: true,
	}
}

func TestTaskRepository_CreateAppendsPositions(t *testing.T) {
	repo := setupTaskRepo(t)
	ctx := context.Background()
	day := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

	first := dailyTask("Ravi", "buy milk", day)
	second := dailyTask("Ravi", "gym session", day)
	otherDay := dailyTask("Ravi", "call plumber", day.AddDate(0, 0, 1))

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, otherDay))

	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, 1, first.Position)
	assert.Equal(t, 2, second.Position)
	// A different date starts its own position sequence.
	assert.Equal(t, 1, otherDay.Position)
}

func TestTaskRepository_ListByOwnerAndDateOrdered(t *testing.T) {
	repo := setupTaskRepo(t)
	ctx := context.Background()
	day := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, repo.Create(ctx, dailyTask("Ravi", content, day)))
	}
	require.NoError(t, repo.Create(ctx, dailyTask("Amitha", "hers", day)))

	tasks, err := repo.ListByOwnerAndDate(ctx, "Ravi", day)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{tasks[0].Content, tasks[1].Content, tasks[2].Content})
}

func TestTaskRepository_FindByIDNotFound(t *testing.T) {
	repo := setupTaskRepo(t)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
}

func TestTaskRepository_DeleteIsIdempotent(t *testing.T) {
	repo := setupTaskRepo(t)
	ctx := context.Background()
	task := dailyTask("Ravi", "disposable", time.Now())
	require.NoError(t, repo.Create(ctx, task))

	deleted, err := repo.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestTaskRepository_DeleteKeepsOrderWithGaps(t *testing.T) {
	repo := setupTaskRepo(t)
	ctx := context.Background()
	day := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

	first := dailyTask("Ravi", "one", day)
	second := dailyTask("Ravi", "two", day)
	third := dailyTask("Ravi", "three", day)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, third))

	_, err := repo.Delete(ctx, second.ID)
	require.NoError(t, err)

	// No renumbering on delete: the gap stays, ordering survives, and the
	// next insert appends after the highest surviving position.
	tasks, err := repo.ListByOwnerAndDate(ctx, "Ravi", day)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, 1, tasks[0].Position)
	assert.Equal(t, 3, tasks[1].Position)

	fourth := dailyTask("Ravi", "four", day)
	require.NoError(t, repo.Create(ctx, fourth))
	assert.Equal(t, 4, fourth.Position)
}

func TestTaskRepository_ReassignDate(t *testing.T) {
	repo := setupTaskRepo(t)
	ctx := context.Background()
	day := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	task := dailyTask("Ravi", "movable", day)
	require.NoError(t, repo.Create(ctx, task))

	moved, err := repo.ReassignDate(ctx, task.ID, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, day.AddDate(0, 0, 1), *moved.DueDate)

	// Reassigning to the date the task already has is a no-op.
	again, err := repo.ReassignDate(ctx, task.ID, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, *moved.DueDate, *again.DueDate)
	assert.Equal(t, moved.UpdatedAt.UTC(), again.UpdatedAt.UTC())
}

func TestTaskRepository_StaleDailyFilters(t *testing.T) {
	repo := setupTaskRepo(t)
	ctx := context.Background()
	today := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	stale := dailyTask("Ravi", "stale", yesterday)
	require.NoError(t, repo.Create(ctx, stale))

	done := dailyTask("Ravi", "done", yesterday)
	done.Completed = true
	require.NoError(t, repo.Create(ctx, done))

	pinned := dailyTask("Ravi", "pinned", yesterday)
	pinned.AutoRollover = false
	require.NoError(t, repo.Create(ctx, pinned))

	current := dailyTask("Ravi", "current", today)
	require.NoError(t, repo.Create(ctx, current))

	quarterly := &model.Task{Owner: "Ravi", Content: "quarterly", Scope: model.ScopeQuarterly, AutoRollover: true}
	require.NoError(t, repo.Create(ctx, quarterly))

	tasks, err := repo.StaleDaily(ctx, "Ravi", today)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "stale", tasks[0].Content)
}
