package query_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bluenest/internal/model"
	"bluenest/internal/query"
	"bluenest/internal/repository"
)

type aggFixture struct {
	taskRepo   *repository.TaskRepository
	collabRepo *repository.CollabRepository
	agg        *query.Aggregator
}

func setupAggregator(t *testing.T) *aggFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := repository.NewDB(dsn)
	require.NoError(t, err)

	taskRepo := repository.NewTaskRepository(db)
	collabRepo := repository.NewCollabRepository(db)
	return &aggFixture{
		taskRepo:   taskRepo,
		collabRepo: collabRepo,
		agg:        query.NewAggregator(taskRepo, collabRepo, collabRepo, collabRepo, testOwners),
	}
}

func (f *aggFixture) addTask(t *testing.T, owner, content string, due time.Time, completed bool) {
	t.Helper()
	day := model.Day(due)
	task := &model.Task{Owner: owner, Content: content, Scope: model.ScopeDaily, DueDate: &day, Completed: completed}
	require.NoError(t, f.taskRepo.Create(context.Background(), task))
}

func TestAggregator_EmptyQueryGreets(t *testing.T) {
	f := setupAggregator(t)

	answer, err := f.agg.Answer(context.Background(), "   ", "Ravi", anchor)
	require.NoError(t, err)
	assert.Equal(t, query.Greeting, answer)
}

func TestAggregator_TasksForNamedDay(t *testing.T) {
	f := setupAggregator(t)
	f.addTask(t, "Ravi", "renew passport", utcDay(2025, 4, 10), true)
	f.addTask(t, "Ravi", "call the bank", utcDay(2025, 4, 10), false)
	f.addTask(t, "Ravi", "different day", utcDay(2025, 4, 9), false)
	f.addTask(t, "Amitha", "her errand", utcDay(2025, 4, 10), false)

	answer, err := f.agg.Answer(context.Background(), "What did I do on April 10th?", "Ravi", anchor)
	require.NoError(t, err)
	assert.Contains(t, answer, "Ravi:")
	assert.Contains(t, answer, "renew passport (done)")
	assert.Contains(t, answer, "call the bank (pending)")
	assert.NotContains(t, answer, "different day")
	assert.NotContains(t, answer, "her errand")
}

func TestAggregator_NothingFound(t *testing.T) {
	f := setupAggregator(t)

	answer, err := f.agg.Answer(context.Background(), "What did I do on April 10th?", "Ravi", anchor)
	require.NoError(t, err)
	assert.Equal(t, query.NothingFoundReply, answer)
}

func TestAggregator_SharedQueryGroupsPerOwner(t *testing.T) {
	f := setupAggregator(t)
	f.addTask(t, "Ravi", "his part", utcDay(2025, 4, 11), false)
	f.addTask(t, "Amitha", "her part", utcDay(2025, 4, 11), true)

	answer, err := f.agg.Answer(context.Background(), "What did we do on April 11th?", "Ravi", anchor)
	require.NoError(t, err)

	raviAt := strings.Index(answer, "Ravi:")
	amithaAt := strings.Index(answer, "Amitha:")
	require.GreaterOrEqual(t, raviAt, 0)
	require.Greater(t, amithaAt, raviAt, "owners render in configured order")
	assert.Contains(t, answer, "his part (pending)")
	assert.Contains(t, answer, "her part (done)")
}

func TestAggregator_SharedScopePullsCommonItems(t *testing.T) {
	f := setupAggregator(t)
	ctx := context.Background()
	require.NoError(t, f.collabRepo.AddWish(ctx, &model.Wish{Owner: model.CommonOwner, Title: "espresso machine"}))
	require.NoError(t, f.collabRepo.AddWish(ctx, &model.Wish{Owner: "Ravi", Title: "running shoes"}))

	answer, err := f.agg.Answer(ctx, "what's on our wishlist", "Ravi", anchor)
	require.NoError(t, err)
	assert.Contains(t, answer, "Shared:")
	assert.Contains(t, answer, "espresso machine")
	assert.Contains(t, answer, "running shoes")

	// A single-owner query never surfaces the shared group.
	solo, err := f.agg.Answer(ctx, "what's on my wishlist", "Ravi", anchor)
	require.NoError(t, err)
	assert.NotContains(t, solo, "Shared:")
	assert.NotContains(t, solo, "espresso machine")
}

func TestAggregator_AmbiguousDateAsksBack(t *testing.T) {
	f := setupAggregator(t)
	f.addTask(t, "Ravi", "real task", utcDay(2025, 4, 10), false)

	answer, err := f.agg.Answer(context.Background(), "what happened on February 31st", "Ravi", anchor)
	require.NoError(t, err)
	assert.Contains(t, answer, "which date")
	assert.NotContains(t, answer, "real task")
}

func TestAggregator_TaskQueryDefaultsToToday(t *testing.T) {
	f := setupAggregator(t)
	f.addTask(t, "Ravi", "today's task", model.Day(anchor), false)
	f.addTask(t, "Ravi", "yesterday's task", model.Day(anchor).AddDate(0, 0, -1), false)

	answer, err := f.agg.Answer(context.Background(), "what tasks do I have", "Ravi", anchor)
	require.NoError(t, err)
	assert.Contains(t, answer, "today's task")
	assert.NotContains(t, answer, "yesterday's task")
}

func TestAggregator_GoalsAreUnbounded(t *testing.T) {
	f := setupAggregator(t)
	ctx := context.Background()
	require.NoError(t, f.collabRepo.AddGoal(ctx, &model.Goal{
		Owner: "Ravi", Title: "run a half marathon", Period: model.ScopeQuarterly, Target: "21 km", Progress: 40,
	}))
	require.NoError(t, f.collabRepo.AddGoal(ctx, &model.Goal{
		Owner: "Ravi", Title: "read 24 books", Period: model.ScopeYearly, Progress: 25,
	}))

	// No date in the text and none implied: goals carry no date semantics.
	answer, err := f.agg.Answer(ctx, "show my goals", "Ravi", anchor)
	require.NoError(t, err)
	assert.Contains(t, answer, "run a half marathon (quarterly goal, 40% of 21 km)")
	assert.Contains(t, answer, "read 24 books (yearly goal, 25%)")
}

func TestAggregator_WeekRangeShowsDates(t *testing.T) {
	f := setupAggregator(t)
	f.addTask(t, "Ravi", "monday thing", utcDay(2025, 4, 7), true)
	f.addTask(t, "Ravi", "wednesday thing", utcDay(2025, 4, 9), false)

	answer, err := f.agg.Answer(context.Background(), "what did I do this week", "Ravi", anchor)
	require.NoError(t, err)
	assert.Contains(t, answer, "monday thing (Apr 7, done)")
	assert.Contains(t, answer, "wednesday thing (Apr 9, pending)")
}
