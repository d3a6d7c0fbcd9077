package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bluenest/internal/model"
)

// Fixed responses that are part of the aggregator's contract.
const (
	Greeting = "Hey! It's Blue Boy!! What do you want to know from me?"

	// NothingFoundReply is returned whenever the resolved query matches no
	// records. A contract, not a fallback: empty results never produce a
	// blank string.
	NothingFoundReply = "I couldn't find anything for that. Try adding a few items first!"

	clarifyDateReply = `I couldn't work out which date you meant. Try something like "April 10" or "yesterday".`
)

// maxRangeDays bounds how many days of tasks one query may scan.
const maxRangeDays = 31

// TaskSource is the slice of the task store the aggregator reads.
type TaskSource interface {
	ListByOwnerAndDate(ctx context.Context, owner string, day time.Time) ([]model.Task, error)
}

// Wishlist, VisionBoard and Goals are the external collaborator read
// interfaces. Each accepts a concrete owner or the Common pseudo-owner.
type Wishlist interface {
	ListWishes(ctx context.Context, owner string) ([]model.Wish, error)
}

type VisionBoard interface {
	ListBoardItems(ctx context.Context, owner string, from, to *time.Time) ([]model.BoardItem, error)
}

type Goals interface {
	ListGoals(ctx context.Context, owner string, period model.Scope) ([]model.Goal, error)
}

// Aggregator answers free-text questions by resolving a date, person and
// topic, fetching matching records from every source in scope and rendering a
// deterministic textual summary.
type Aggregator struct {
	tasks    TaskSource
	wishlist Wishlist
	vision   VisionBoard
	goals    Goals
	owners   []string
}

func NewAggregator(tasks TaskSource, wishlist Wishlist, vision VisionBoard, goals Goals, owners []string) *Aggregator {
	return &Aggregator{tasks: tasks, wishlist: wishlist, vision: vision, goals: goals, owners: owners}
}

// Answer runs the resolution pipeline for one query. activeOwner is the
// session's owner, used when the text names nobody; now anchors relative date
// expressions. Unresolvable dates degrade to a clarifying question, never an
// error; storage errors propagate.
func (a *Aggregator) Answer(ctx context.Context, text, activeOwner string, now time.Time) (string, error) {
	if strings.TrimSpace(text) == "" {
		return Greeting, nil
	}

	dateRef, err := ResolveDate(text, now)
	if errors.Is(err, ErrAmbiguousDate) {
		return clarifyDateReply, nil
	}
	if err != nil {
		return "", err
	}

	person := ResolvePerson(text, a.owners, activeOwner)
	topic := ResolveTopic(text)

	if dateRef == nil && dateScoped(topic) {
		today := model.Day(now)
		dateRef = &DateRef{From: today, To: today}
	}

	intent := Intent{Date: dateRef, Person: person, Topic: topic}
	return a.summarize(ctx, intent)
}

// summarize fetches every topic in scope for every owner in scope and renders
// the result grouped per owner. Shared items appear in their own group when
// the query spans both owners.
func (a *Aggregator) summarize(ctx context.Context, intent Intent) (string, error) {
	var sections []string

	for _, owner := range intent.Person.Owners {
		lines, err := a.fetchFor(ctx, owner, intent)
		if err != nil {
			return "", err
		}
		if len(lines) > 0 {
			sections = append(sections, owner+":\n"+strings.Join(lines, "\n"))
		}
	}

	if intent.Person.Common {
		lines, err := a.fetchShared(ctx, intent)
		if err != nil {
			return "", err
		}
		if len(lines) > 0 {
			sections = append(sections, "Shared:\n"+strings.Join(lines, "\n"))
		}
	}

	if len(sections) == 0 {
		return NothingFoundReply, nil
	}
	return strings.Join(sections, "\n\n"), nil
}

// fetchFor collects one owner's lines for the resolved topic(s).
func (a *Aggregator) fetchFor(ctx context.Context, owner string, intent Intent) ([]string, error) {
	var lines []string

	if intent.Topic == TopicTasks || intent.Topic == TopicAny {
		taskLines, err := a.taskLines(ctx, owner, intent.Date)
		if err != nil {
			return nil, err
		}
		lines = append(lines, taskLines...)
	}

	collabLines, err := a.fetchForCollaborators(ctx, owner, intent)
	if err != nil {
		return nil, err
	}
	return append(lines, collabLines...), nil
}

// fetchShared collects Common-scoped collaborator items. Tasks never have a
// Common owner, so only the collaborators contribute here.
func (a *Aggregator) fetchShared(ctx context.Context, intent Intent) ([]string, error) {
	if intent.Topic == TopicTasks {
		return nil, nil
	}
	return a.fetchForCollaborators(ctx, model.CommonOwner, intent)
}

func (a *Aggregator) fetchForCollaborators(ctx context.Context, owner string, intent Intent) ([]string, error) {
	var lines []string

	if intent.Topic == TopicGoals || intent.Topic == TopicAny {
		goalLines, err := a.goalLines(ctx, owner)
		if err != nil {
			return nil, err
		}
		lines = append(lines, goalLines...)
	}
	if intent.Topic == TopicVisionBoard || intent.Topic == TopicAny {
		visionLines, err := a.visionLines(ctx, owner, intent.Date)
		if err != nil {
			return nil, err
		}
		lines = append(lines, visionLines...)
	}
	if intent.Topic == TopicWishlist || intent.Topic == TopicAny {
		wishLines, err := a.wishLines(ctx, owner)
		if err != nil {
			return nil, err
		}
		lines = append(lines, wishLines...)
	}

	return lines, nil
}

func (a *Aggregator) taskLines(ctx context.Context, owner string, dateRef *DateRef) ([]string, error) {
	if dateRef == nil {
		return nil, nil
	}

	showDate := !dateRef.From.Equal(dateRef.To)
	var lines []string
	for day, i := dateRef.From, 0; !day.After(dateRef.To) && i < maxRangeDays; day, i = day.AddDate(0, 0, 1), i+1 {
		tasks, err := a.tasks.ListByOwnerAndDate(ctx, owner, day)
		if err != nil {
			return nil, err
		}
		for _, task := range tasks {
			status := "pending"
			if task.Completed {
				status = "done"
			}
			if showDate {
				lines = append(lines, fmt.Sprintf("- %s (%s, %s)", task.Content, day.Format("Jan 2"), status))
			} else {
				lines = append(lines, fmt.Sprintf("- %s (%s)", task.Content, status))
			}
		}
	}
	return lines, nil
}

func (a *Aggregator) goalLines(ctx context.Context, owner string) ([]string, error) {
	var lines []string
	for _, period := range []model.Scope{model.ScopeQuarterly, model.ScopeYearly} {
		goals, err := a.goals.ListGoals(ctx, owner, period)
		if err != nil {
			return nil, err
		}
		for _, goal := range goals {
			line := fmt.Sprintf("- %s (%s goal, %.0f%% of %s)", goal.Title, period, goal.Progress, goal.Target)
			if goal.Target == "" {
				line = fmt.Sprintf("- %s (%s goal, %.0f%%)", goal.Title, period, goal.Progress)
			}
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (a *Aggregator) visionLines(ctx context.Context, owner string, dateRef *DateRef) ([]string, error) {
	var from, to *time.Time
	if dateRef != nil {
		from, to = &dateRef.From, &dateRef.To
	}
	items, err := a.vision.ListBoardItems(ctx, owner, from, to)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %s (vision board, %s)", item.Title, item.ContentType))
	}
	return lines, nil
}

func (a *Aggregator) wishLines(ctx context.Context, owner string) ([]string, error) {
	wishes, err := a.wishlist.ListWishes(ctx, owner)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, wish := range wishes {
		lines = append(lines, fmt.Sprintf("- %s (wishlist)", wish.Title))
	}
	return lines, nil
}
