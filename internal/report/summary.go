package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/naka-gawa/gh-review-activity/internal/domain"
)

// summaryOrder is the order actions are listed in a summary.
var summaryOrder = []domain.Action{
	domain.ActionApproved,
	domain.ActionChangesRequested,
	domain.ActionCommented,
	domain.ActionOther,
}

// Summary holds totals over a grouped report.
type Summary struct {
	Total        int
	Days         int
	ByAction     map[domain.Action]int
	MedianPerDay float64
	MaxPerDay    float64
}

// Summarize counts the activities in buckets per action and per day.
func Summarize(buckets domain.DayBuckets) Summary {
	s := Summary{ByAction: make(map[domain.Action]int)}
	perDay := make(stats.Float64Data, 0, len(buckets))
	for _, activities := range buckets {
		if len(activities) == 0 {
			continue
		}
		perDay = append(perDay, float64(len(activities)))
		for _, a := range activities {
			s.ByAction[a.Action]++
		}
		s.Total += len(activities)
	}
	s.Days = len(perDay)
	if s.Days == 0 {
		return s
	}
	// Both only fail on empty input.
	s.MedianPerDay, _ = stats.Median(perDay)
	s.MaxPerDay, _ = stats.Max(perDay)
	return s
}

// ActionLabel returns a human label for action, e.g. "Changes Requested".
func ActionLabel(action domain.Action) string {
	words := strings.ReplaceAll(strings.ToLower(string(action)), "_", " ")
	return cases.Title(language.English).String(words)
}

// String renders the summary as two lines: totals, then per-action counts.
func (s Summary) String() string {
	if s.Total == 0 {
		return "Total: 0 activities"
	}
	head := fmt.Sprintf("Total: %d %s over %d %s (median %s/day, max %s/day)",
		s.Total, plural(s.Total, "activity", "activities"),
		s.Days, plural(s.Days, "day", "days"),
		strconv.FormatFloat(s.MedianPerDay, 'f', -1, 64), strconv.FormatFloat(s.MaxPerDay, 'f', -1, 64),
	)

	var parts []string
	for _, action := range summaryOrder {
		if n := s.ByAction[action]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s %s: %d", Glyph(action), ActionLabel(action), n))
		}
	}
	return head + "\n" + strings.Join(parts, "  ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
