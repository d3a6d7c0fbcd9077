package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"bluenest/internal/config"
	"bluenest/internal/model"
	"bluenest/internal/query"
	"bluenest/internal/repository"
	"bluenest/internal/service"
)

const genericFailure = "Something went wrong, please try again."

// chatState tracks what one chat is currently looking at: the day being
// viewed and the index-to-task mapping of the last listing.
type chatState struct {
	viewDate time.Time
	listing  []uuid.UUID
}

// Bot is the chat surface of the planner. It is a thin adapter: every rule
// lives in the services it calls.
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.Config
	taskSvc     *service.TaskService
	rolloverSvc *service.RolloverService
	metricsSvc  *service.MetricsService
	metricRepo  *repository.MetricRepository
	aggregator  *query.Aggregator
	ownersByID  map[int64]string
	states      map[int64]*chatState
	mu          sync.Mutex
}

func New(token string, cfg *config.Config, taskSvc *service.TaskService, rolloverSvc *service.RolloverService, metricsSvc *service.MetricsService, metricRepo *repository.MetricRepository, aggregator *query.Aggregator) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	ownersByID := make(map[int64]string, len(cfg.OwnerChats))
	for owner, chatID := range cfg.OwnerChats {
		ownersByID[chatID] = owner
	}

	return &Bot{
		api:         api,
		cfg:         cfg,
		taskSvc:     taskSvc,
		rolloverSvc: rolloverSvc,
		metricsSvc:  metricsSvc,
		metricRepo:  metricRepo,
		aggregator:  aggregator,
		ownersByID:  ownersByID,
		states:      make(map[int64]*chatState),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil || update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	owner, ok := b.ownersByID[msg.From.ID]
	if !ok {
		return b.sendText(msg.Chat.ID, "This planner belongs to someone else. Ask them to add your chat id to TELEGRAM_OWNER_CHATS.")
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %s: /%s %s", owner, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg, owner)
	}

	// Any plain text goes to Ask Blue.
	answer, err := b.aggregator.Answer(ctx, msg.Text, owner, time.Now())
	if err != nil {
		log.Printf("answer query for %s: %v", owner, err)
		return b.sendText(msg.Chat.ID, genericFailure)
	}
	return b.sendText(msg.Chat.ID, escape(answer))
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, owner string) error {
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		return b.handleStart(msg, owner)
	case "help":
		return b.handleHelp(msg)
	case "add":
		return b.handleAdd(ctx, msg, owner, args)
	case "tasks":
		return b.showDay(ctx, msg.Chat.ID, owner, b.currentDate(msg.Chat.ID))
	case "prev":
		return b.handleStep(ctx, msg, owner, service.StepPrev)
	case "next":
		return b.handleStep(ctx, msg, owner, service.StepNext)
	case "goto":
		return b.handleGoto(ctx, msg, owner, args)
	case "done":
		return b.handleToggle(ctx, msg, owner, args)
	case "delete":
		return b.handleDelete(ctx, msg, args)
	case "keep":
		return b.handleKeep(ctx, msg, args)
	case "rollover":
		return b.handleRolloverPref(ctx, msg, owner, args)
	case "insights":
		return b.handleInsights(ctx, msg, owner)
	case "report":
		return b.handleReport(ctx, msg, owner)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command, see /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message, owner string) error {
	text := fmt.Sprintf(
		"💙 Hi %s! I'm BlueNest.\n\n"+
			"Send me any question (\"What did we do on April 10?\") or use:\n"+
			"• /add <text> — add a task for the viewed day\n"+
			"• /tasks — show the viewed day\n"+
			"• /prev, /next — page one day at a time\n"+
			"• /goto 2025-04-10 — jump to a date\n"+
			"• /done <n>, /delete <n> — finish or remove a listed task\n"+
			"• /keep <n> on|off — keep carrying a task forward, or stop\n"+
			"• /rollover on|off — your rollover preference\n"+
			"• /insights — which tasks keep slipping\n"+
			"• /report — today's dashboard numbers",
		escape(owner),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID,
		"Ask me about tasks, goals, wishlist or the vision board — include a date (\"yesterday\", \"April 10\") "+
			"or a name (\"Ravi\", \"we\") to narrow it down. /start lists the commands.")
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message, owner, args string) error {
	day := b.currentDate(msg.Chat.ID)
	task, err := b.taskSvc.AddTask(ctx, owner, args, model.ScopeDaily, &day)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	log.Printf("[info] task created id=%s owner=%s", task.ID, owner)
	return b.showDay(ctx, msg.Chat.ID, owner, day)
}

func (b *Bot) handleStep(ctx context.Context, msg *tgbotapi.Message, owner string, dir service.StepDirection) error {
	today := model.Day(time.Now())
	next, err := service.Step(today, b.currentDate(msg.Chat.ID), dir, b.cfg.FastPathDays)
	if err != nil {
		var oofp *service.OutOfFastPathError
		if errors.As(err, &oofp) {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("That's beyond the ±%d day window — jump straight to a date with /goto 2025-04-10.", oofp.Width))
		}
		return b.replyError(msg.Chat.ID, err)
	}
	b.setDate(msg.Chat.ID, next)
	return b.showDay(ctx, msg.Chat.ID, owner, next)
}

func (b *Bot) handleGoto(ctx context.Context, msg *tgbotapi.Message, owner, args string) error {
	parsed, err := time.Parse("2006-01-02", args)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give me the date as /goto 2025-04-10")
	}
	day := model.Day(parsed)
	b.setDate(msg.Chat.ID, day)
	return b.showDay(ctx, msg.Chat.ID, owner, day)
}

func (b *Bot) handleToggle(ctx context.Context, msg *tgbotapi.Message, owner, args string) error {
	id, err := b.taskAt(msg.Chat.ID, args)
	if err != nil {
		return b.sendText(msg.Chat.ID, err.Error())
	}
	if _, err := b.taskSvc.ToggleComplete(ctx, id); err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	return b.showDay(ctx, msg.Chat.ID, owner, b.currentDate(msg.Chat.ID))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message, args string) error {
	id, err := b.taskAt(msg.Chat.ID, args)
	if err != nil {
		return b.sendText(msg.Chat.ID, err.Error())
	}
	deleted, err := b.taskSvc.DeleteTask(ctx, id)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if !deleted {
		return b.sendText(msg.Chat.ID, "Already gone.")
	}
	return b.sendText(msg.Chat.ID, "🗑 Deleted.")
}

func (b *Bot) handleKeep(ctx context.Context, msg *tgbotapi.Message, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
		return b.sendText(msg.Chat.ID, "Usage: /keep <n> on|off")
	}
	id, err := b.taskAt(msg.Chat.ID, fields[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, err.Error())
	}
	task, err := b.taskSvc.SetAutoRollover(ctx, id, fields[1] == "on")
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if task.AutoRollover {
		return b.sendText(msg.Chat.ID, "♻️ This task will keep carrying forward until done.")
	}
	return b.sendText(msg.Chat.ID, "This task will stay on its day even if unfinished.")
}

func (b *Bot) handleRolloverPref(ctx context.Context, msg *tgbotapi.Message, owner, args string) error {
	if args != "on" && args != "off" {
		return b.sendText(msg.Chat.ID, "Usage: /rollover on|off")
	}
	if err := b.rolloverSvc.SetEnabled(ctx, owner, args == "on"); err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if args == "on" {
		return b.sendText(msg.Chat.ID, "Rollover is on: unfinished daily tasks follow you to the next day.")
	}
	return b.sendText(msg.Chat.ID, "Rollover is off. Nothing already moved gets moved back.")
}

func (b *Bot) handleInsights(ctx context.Context, msg *tgbotapi.Message, owner string) error {
	insights, err := b.rolloverSvc.Insights(ctx, owner)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if insights.TotalHops == 0 {
		return b.sendText(msg.Chat.ID, "No tasks have rolled over yet. 🎉")
	}

	var builder strings.Builder
	builder.WriteString("🔄 <b>Rollover insights</b>\n")
	builder.WriteString(fmt.Sprintf("• %d day-hops across %d tasks\n", insights.TotalHops, insights.DistinctTasks))
	if insights.MostRolled != nil {
		builder.WriteString(fmt.Sprintf("• Most slipped: «%s» — %d days", escape(insights.MostRolled.Content), insights.MostRolledHops))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message, owner string) error {
	today := model.Day(time.Now())
	if err := b.metricsSvc.Snapshot(ctx, owner, today); err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	metrics, err := b.metricRepo.ListForDay(ctx, owner, today)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📊 <b>%s — %s</b>\n", escape(owner), today.Format("Jan 2")))
	for _, metric := range metrics {
		switch metric.MetricType {
		case model.MetricCompletionRate:
			builder.WriteString(fmt.Sprintf("• Completion: %.0f%%\n", metric.MetricValue))
		case model.MetricStreakDays:
			builder.WriteString(fmt.Sprintf("• Streak: %.0f days\n", metric.MetricValue))
		case model.MetricRolloverCount:
			builder.WriteString(fmt.Sprintf("• Rolled over today: %.0f\n", metric.MetricValue))
		}
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

// showDay renders one day's list and remembers the index mapping for
// /done, /delete and /keep.
func (b *Bot) showDay(ctx context.Context, chatID int64, owner string, day time.Time) error {
	tasks, err := b.taskSvc.TasksForDay(ctx, owner, day)
	if err != nil {
		return b.replyError(chatID, err)
	}

	listing := make([]uuid.UUID, 0, len(tasks))
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 <b>%s</b>\n", day.Format("Monday, Jan 2")))
	if len(tasks) == 0 {
		builder.WriteString("Nothing planned. /add something?")
	}
	for i, task := range tasks {
		listing = append(listing, task.ID)
		mark := "◻️"
		if task.Completed {
			mark = "✅"
		}
		builder.WriteString(fmt.Sprintf("%s %d. %s\n", mark, i+1, escape(task.Content)))
	}

	b.mu.Lock()
	state := b.states[chatID]
	if state == nil {
		state = &chatState{viewDate: day}
		b.states[chatID] = state
	}
	state.listing = listing
	b.mu.Unlock()

	return b.sendText(chatID, strings.TrimSpace(builder.String()))
}

// taskAt maps a 1-based listing index from the user to a task id.
func (b *Bot) taskAt(chatID int64, arg string) (uuid.UUID, error) {
	index, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return uuid.Nil, errors.New("give me the task number from the last /tasks list")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	state := b.states[chatID]
	if state == nil || index < 1 || index > len(state.listing) {
		return uuid.Nil, errors.New("that number isn't on the last list — run /tasks first")
	}
	return state.listing[index-1], nil
}

func (b *Bot) currentDate(chatID int64) time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	if state, ok := b.states[chatID]; ok && !state.viewDate.IsZero() {
		return state.viewDate
	}
	return model.Day(time.Now())
}

func (b *Bot) setDate(chatID int64, day time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state := b.states[chatID]
	if state == nil {
		state = &chatState{}
		b.states[chatID] = state
	}
	state.viewDate = day
	state.listing = nil
}

// replyError maps core errors to user-facing replies. Validation messages are
// shown as-is; anything else is a storage-level fault and collapses to a
// generic retry message at this outermost boundary.
func (b *Bot) replyError(chatID int64, err error) error {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		return b.sendText(chatID, escape(validation.Error()))
	case errors.Is(err, repository.ErrTaskNotFound):
		return b.sendText(chatID, "Task not found — it may have been deleted.")
	default:
		log.Printf("request failed: %v", err)
		return b.sendText(chatID, genericFailure)
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func escape(s string) string {
	return html.EscapeString(s)
}
