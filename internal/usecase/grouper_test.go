package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/gh-review-activity/internal/domain"
)

func at(day, hour int) time.Time {
	return time.Date(2025, 1, day, hour, 0, 0, 0, time.UTC)
}

func act(url string, action domain.Action, t time.Time) domain.Activity {
	return domain.Activity{Title: "PR " + url, URL: url, Action: action, CreatedAt: t}
}

func TestGroupByDay(t *testing.T) {
	testCases := []struct {
		name     string
		input    []domain.Activity
		expected domain.DayBuckets
	}{
		{
			name:     "empty input",
			input:    nil,
			expected: domain.DayBuckets{},
		},
		{
			name: "comment then approval keeps the approval",
			input: []domain.Activity{
				act("a", domain.ActionCommented, at(14, 9)),
				act("a", domain.ActionApproved, at(14, 17)),
			},
			expected: domain.DayBuckets{
				"2025-01-14": {act("a", domain.ActionApproved, at(14, 17))},
			},
		},
		{
			name: "lower priority never replaces",
			input: []domain.Activity{
				act("a", domain.ActionChangesRequested, at(14, 9)),
				act("a", domain.ActionCommented, at(14, 10)),
				act("a", domain.ActionOther, at(14, 11)),
			},
			expected: domain.DayBuckets{
				"2025-01-14": {act("a", domain.ActionChangesRequested, at(14, 9))},
			},
		},
		{
			name: "ties keep the first seen entry",
			input: []domain.Activity{
				act("a", domain.ActionCommented, at(14, 9)),
				act("a", domain.ActionCommented, at(14, 12)),
			},
			expected: domain.DayBuckets{
				"2025-01-14": {act("a", domain.ActionCommented, at(14, 9))},
			},
		},
		{
			name: "replacement keeps the first occurrence position",
			input: []domain.Activity{
				act("a", domain.ActionCommented, at(14, 20)),
				act("b", domain.ActionApproved, at(14, 8)),
				act("a", domain.ActionApproved, at(14, 21)),
				act("c", domain.ActionOther, at(14, 1)),
			},
			expected: domain.DayBuckets{
				"2025-01-14": {
					act("a", domain.ActionApproved, at(14, 21)),
					act("b", domain.ActionApproved, at(14, 8)),
					act("c", domain.ActionOther, at(14, 1)),
				},
			},
		},
		{
			name: "same pull request on different days stays separate",
			input: []domain.Activity{
				act("a", domain.ActionApproved, at(16, 9)),
				act("a", domain.ActionCommented, at(14, 9)),
			},
			expected: domain.DayBuckets{
				"2025-01-16": {act("a", domain.ActionApproved, at(16, 9))},
				"2025-01-14": {act("a", domain.ActionCommented, at(14, 9))},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GroupByDay(tc.input))
		})
	}
}

// TestGroupByDay_Properties checks the merge rules over a mixed input.
func TestGroupByDay_Properties(t *testing.T) {
	actions := []domain.Action{domain.ActionOther, domain.ActionCommented, domain.ActionApproved, domain.ActionChangesRequested}
	urls := []string{"a", "b", "c"}
	var input []domain.Activity
	for i := 0; i < 36; i++ {
		input = append(input, act(urls[i%len(urls)], actions[(i/3)%len(actions)], at(10+i%4, i%24)))
	}

	buckets := GroupByDay(input)

	inputDays := make(map[string]bool)
	for _, a := range input {
		inputDays[a.DayKey()] = true
	}
	for day, list := range buckets {
		assert.True(t, inputDays[day], "day %s has no input activity", day)

		seen := make(map[string]bool)
		for _, kept := range list {
			require.False(t, seen[kept.URL], "url %s kept twice on %s", kept.URL, day)
			seen[kept.URL] = true

			var first *domain.Activity
			best := -1
			for i, a := range input {
				if a.DayKey() != day || a.URL != kept.URL {
					continue
				}
				if p := actionPriority[a.Action]; p > best {
					best = p
					first = &input[i]
				}
			}
			require.NotNil(t, first)
			assert.Equal(t, *first, kept)
		}
	}
}
