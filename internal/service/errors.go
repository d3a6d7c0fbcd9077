package service

import "fmt"

// ValidationError reports bad input shape. It is recoverable and meant to be
// shown to the user as-is, never logged as a fault.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// OutOfFastPathError is a routing signal, not a failure: the requested step
// leaves the day-by-day paging window and the caller should switch to direct
// date selection.
type OutOfFastPathError struct {
	OffsetDays int
	Width      int
}

func (e *OutOfFastPathError) Error() string {
	return fmt.Sprintf("date is %d days from today, outside the ±%d day window; pick the date directly", e.OffsetDays, e.Width)
}
