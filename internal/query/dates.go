package query

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bluenest/internal/model"
)

// ErrAmbiguousDate means the text contained a date expression that could not
// be resolved to a real date. The aggregator answers with a clarifying
// question instead of propagating it.
var ErrAmbiguousDate = errors.New("ambiguous date expression")

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var (
	isoPattern      = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	monthDayPattern = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	dayMonthPattern = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
	numericPattern  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}))?\b`)
)

// ResolveDate scans the text for one date expression, absolute or relative.
// It returns nil when the text has no date semantics at all, and
// ErrAmbiguousDate when an expression is present but unresolvable.
func ResolveDate(text string, today time.Time) (*DateRef, error) {
	lower := strings.ToLower(text)
	day := model.Day(today)

	switch {
	case strings.Contains(lower, "yesterday"):
		return singleDay(day.AddDate(0, 0, -1)), nil
	case strings.Contains(lower, "tomorrow"):
		return singleDay(day.AddDate(0, 0, 1)), nil
	case strings.Contains(lower, "today"):
		return singleDay(day), nil
	case strings.Contains(lower, "last week"):
		start, end := weekBounds(day.AddDate(0, 0, -7))
		return &DateRef{From: start, To: end}, nil
	case strings.Contains(lower, "this week"):
		start, end := weekBounds(day)
		return &DateRef{From: start, To: end}, nil
	}

	if m := isoPattern.FindStringSubmatch(lower); m != nil {
		parsed, err := time.Parse("2006-01-02", m[0])
		if err != nil {
			return nil, ErrAmbiguousDate
		}
		return singleDay(model.Day(parsed)), nil
	}

	if m := monthDayPattern.FindStringSubmatch(lower); m != nil {
		return monthDay(m[1], m[2], today)
	}
	if m := dayMonthPattern.FindStringSubmatch(lower); m != nil {
		return monthDay(m[2], m[1], today)
	}

	if m := numericPattern.FindStringSubmatch(lower); m != nil {
		month, _ := strconv.Atoi(m[1])
		dayNum, _ := strconv.Atoi(m[2])
		year := today.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		return calendarDay(year, time.Month(month), dayNum)
	}

	return nil, nil
}

// monthDay resolves a month-name + day expression to a day in the current year.
func monthDay(monthName, dayStr string, today time.Time) (*DateRef, error) {
	month, ok := monthsByName[monthName]
	if !ok {
		return nil, ErrAmbiguousDate
	}
	dayNum, err := strconv.Atoi(dayStr)
	if err != nil {
		return nil, ErrAmbiguousDate
	}
	return calendarDay(today.Year(), month, dayNum)
}

// calendarDay validates that the day actually exists in the month.
func calendarDay(year int, month time.Month, day int) (*DateRef, error) {
	if month < time.January || month > time.December || day < 1 {
		return nil, ErrAmbiguousDate
	}
	candidate := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if candidate.Month() != month || candidate.Day() != day {
		return nil, ErrAmbiguousDate
	}
	return singleDay(candidate), nil
}

func singleDay(day time.Time) *DateRef {
	return &DateRef{From: day, To: day}
}

// weekBounds returns the Monday and Sunday of the week containing day.
func weekBounds(day time.Time) (time.Time, time.Time) {
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := day.AddDate(0, 0, 1-weekday)
	return start, start.AddDate(0, 0, 6)
}
