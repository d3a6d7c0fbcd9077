package query

import (
	"regexp"
	"strings"
	"time"
)

// Topic names one of the data sources a query can target.
type Topic string

const (
	TopicTasks       Topic = "tasks"
	TopicGoals       Topic = "goals"
	TopicVisionBoard Topic = "vision_board"
	TopicWishlist    Topic = "wishlist"
	TopicAny         Topic = "any"
)

// PersonRef is the resolved owner scope of a query.
type PersonRef struct {
	// Owners are the concrete owners to fetch for, in configured order.
	Owners []string
	// Common is true when the query spans both owners ("we", "us", "our"),
	// which also pulls in shared wishlist/vision/goal items.
	Common bool
}

// DateRef is an inclusive day range. From equals To for a single day.
type DateRef struct {
	From time.Time
	To   time.Time
}

// Intent is the parsed form of a raw query. Ephemeral, recomputed per request.
type Intent struct {
	Date   *DateRef
	Person PersonRef
	Topic  Topic
}

var commonPattern = regexp.MustCompile(`\b(we|us|our|ours|both)\b`)

// ResolvePerson detects explicit owner names or a shared-scope pronoun.
// Default is the requesting session's active owner.
func ResolvePerson(text string, owners []string, active string) PersonRef {
	lower := strings.ToLower(text)

	var mentioned []string
	for _, owner := range owners {
		if strings.Contains(lower, strings.ToLower(owner)) {
			mentioned = append(mentioned, owner)
		}
	}

	if commonPattern.MatchString(lower) || len(mentioned) > 1 {
		return PersonRef{Owners: owners, Common: true}
	}
	if len(mentioned) == 1 {
		return PersonRef{Owners: mentioned}
	}
	return PersonRef{Owners: []string{active}}
}

var topicKeywords = []struct {
	topic   Topic
	pattern *regexp.Regexp
}{
	{TopicWishlist, regexp.MustCompile(`\b(wish|wishes|wishlist|wish list)\b`)},
	{TopicVisionBoard, regexp.MustCompile(`\b(vision|dream|dreams|aspiration|aspirations|inspiration)\b`)},
	{TopicGoals, regexp.MustCompile(`\b(goal|goals|target|objective|objectives)\b`)},
	{TopicTasks, regexp.MustCompile(`\b(task|tasks|todo|to-do|to-dos|doing|did|done|activity|activities|working)\b`)},
}

// ResolveTopic keyword-matches the query against the known topics. The first
// match wins in wishlist, vision, goals, tasks order so "vision board goals"
// reads as a vision-board query. Default is any.
func ResolveTopic(text string) Topic {
	lower := strings.ToLower(text)
	for _, candidate := range topicKeywords {
		if candidate.pattern.MatchString(lower) {
			return candidate.topic
		}
	}
	return TopicAny
}

// dateScoped reports whether the topic defaults to "today" when the query has
// no date expression. Goals, vision board and wishlist have no date semantics
// and default to unbounded.
func dateScoped(topic Topic) bool {
	return topic == TopicTasks
}
