package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bluenest/internal/service"
)

func TestWindowFor(t *testing.T) {
	today := day(2025, 4, 10)

	cases := []struct {
		name       string
		offset     int
		inFastPath bool
	}{
		{"today", 0, true},
		{"yesterday", -1, true},
		{"tomorrow", 1, true},
		{"boundary back", -7, true},
		{"boundary forward", 7, true},
		{"just outside back", -8, false},
		{"just outside forward", 8, false},
		{"far future", 120, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			window := service.WindowFor(today, today.AddDate(0, 0, tc.offset), 7)
			assert.Equal(t, tc.offset, window.OffsetDays)
			assert.Equal(t, tc.inFastPath, window.InFastPath)
			assert.Equal(t, today.AddDate(0, 0, tc.offset), window.Anchor)
		})
	}
}

func TestStep_WalksOneDayAtATime(t *testing.T) {
	today := day(2025, 4, 10)

	next, err := service.Step(today, today, service.StepNext, 7)
	require.NoError(t, err)
	assert.Equal(t, today.AddDate(0, 0, 1), next)

	prev, err := service.Step(today, next, service.StepPrev, 7)
	require.NoError(t, err)
	assert.Equal(t, today, prev)
}

func TestStep_RejectsLeavingFastPath(t *testing.T) {
	today := day(2025, 4, 10)
	edge := today.AddDate(0, 0, 7)

	_, err := service.Step(today, edge, service.StepNext, 7)
	var oob *service.OutOfFastPathError
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, 8, oob.OffsetDays)

	// The backward edge is symmetric.
	_, err = service.Step(today, today.AddDate(0, 0, -7), service.StepPrev, 7)
	assert.ErrorAs(t, err, &oob)

	// Stepping back toward today from the edge is always allowed.
	back, err := service.Step(today, edge, service.StepPrev, 7)
	require.NoError(t, err)
	assert.Equal(t, today.AddDate(0, 0, 6), back)
}

func TestStep_UnknownDirection(t *testing.T) {
	today := day(2025, 4, 10)
	_, err := service.Step(today, today, service.StepDirection("sideways"), 7)
	assert.Error(t, err)
}
