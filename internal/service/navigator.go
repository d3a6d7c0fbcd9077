package service

import (
	"fmt"
	"time"

	"bluenest/internal/model"
)

// DateWindow locates a requested date relative to today. Within the fast path
// the caller may page day by day; outside it, only direct date lookup works.
type DateWindow struct {
	Anchor     time.Time
	OffsetDays int
	InFastPath bool
}

// StepDirection is a single-day paging direction.
type StepDirection string

const (
	StepPrev StepDirection = "prev"
	StepNext StepDirection = "next"
)

// WindowFor computes the paging window for a requested date. width is the
// half-width of the fast path in days.
func WindowFor(today, requested time.Time, width int) DateWindow {
	offset := daysBetween(today, requested)
	return DateWindow{
		Anchor:     model.Day(requested),
		OffsetDays: offset,
		InFastPath: abs(offset) <= width,
	}
}

// Step moves one day from current. Stepping past the fast-path boundary is
// rejected with OutOfFastPathError; the navigator never jumps multiple days.
func Step(today, current time.Time, direction StepDirection, width int) (time.Time, error) {
	var target time.Time
	switch direction {
	case StepPrev:
		target = model.Day(current).AddDate(0, 0, -1)
	case StepNext:
		target = model.Day(current).AddDate(0, 0, 1)
	default:
		return time.Time{}, fmt.Errorf("unknown step direction %q", direction)
	}

	offset := daysBetween(today, target)
	if abs(offset) > width {
		return time.Time{}, &OutOfFastPathError{OffsetDays: offset, Width: width}
	}
	return target, nil
}

// daysBetween returns to - from in whole days, sign preserved.
func daysBetween(from, to time.Time) int {
	return int(model.Day(to).Sub(model.Day(from)).Hours() / 24)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
