package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bluenest/internal/query"
)

// Thursday, April 10th 2025.
var anchor = time.Date(2025, 4, 10, 15, 4, 5, 0, time.UTC)

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveDate_Expressions(t *testing.T) {
	cases := []struct {
		name string
		text string
		from time.Time
		to   time.Time
	}{
		{"month then day", "What did I do on April 10th?", utcDay(2025, 4, 10), utcDay(2025, 4, 10)},
		{"day then month", "tasks for the 3rd of march", utcDay(2025, 3, 3), utcDay(2025, 3, 3)},
		{"iso", "show 2024-12-31 please", utcDay(2024, 12, 31), utcDay(2024, 12, 31)},
		{"numeric month/day", "what about 4/10", utcDay(2025, 4, 10), utcDay(2025, 4, 10)},
		{"numeric with year", "what about 4/10/2024", utcDay(2024, 4, 10), utcDay(2024, 4, 10)},
		{"yesterday", "what did we finish yesterday", utcDay(2025, 4, 9), utcDay(2025, 4, 9)},
		{"tomorrow", "anything planned tomorrow?", utcDay(2025, 4, 11), utcDay(2025, 4, 11)},
		{"today", "how is today looking", utcDay(2025, 4, 10), utcDay(2025, 4, 10)},
		{"this week", "goals this week", utcDay(2025, 4, 7), utcDay(2025, 4, 13)},
		{"last week", "what happened last week", utcDay(2025, 3, 31), utcDay(2025, 4, 6)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := query.ResolveDate(tc.text, anchor)
			require.NoError(t, err)
			require.NotNil(t, ref)
			assert.Equal(t, tc.from, ref.From)
			assert.Equal(t, tc.to, ref.To)
		})
	}
}

func TestResolveDate_NoDateSemantics(t *testing.T) {
	for _, text := range []string{
		"what's on Amitha's wishlist",
		"show me the vision board",
		"hello there",
	} {
		ref, err := query.ResolveDate(text, anchor)
		require.NoError(t, err)
		assert.Nil(t, ref, "%q should carry no date", text)
	}
}

func TestResolveDate_Ambiguous(t *testing.T) {
	for _, text := range []string{
		"what happened on February 31st",
		"tasks for 4/0",
		"show me 13/13",
	} {
		_, err := query.ResolveDate(text, anchor)
		assert.ErrorIs(t, err, query.ErrAmbiguousDate, "%q", text)
	}
}

func TestResolveDate_MonthNameUsesCurrentYear(t *testing.T) {
	ref, err := query.ResolveDate("december 25", anchor)
	require.NoError(t, err)
	require.NotNil(t, ref)
	assert.Equal(t, 2025, ref.From.Year())
}
