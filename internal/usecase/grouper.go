package usecase

import "github.com/naka-gawa/gh-review-activity/internal/domain"

// actionPriority ranks actions when one pull request sees several on the same day.
// Actions missing from the table rank 0.
var actionPriority = map[domain.Action]int{
	domain.ActionApproved:         3,
	domain.ActionChangesRequested: 2,
	domain.ActionCommented:        1,
}

// GroupByDay buckets activities by UTC calendar day and keeps one activity per
// pull request URL and day: the one with the highest priority, or the first seen
// on a tie. Within a day, pull requests keep the order they were first seen in.
func GroupByDay(activities []domain.Activity) domain.DayBuckets {
	buckets := make(domain.DayBuckets)
	// index[day][url] is the position of the url's entry in buckets[day].
	index := make(map[string]map[string]int)

	for _, a := range activities {
		day := a.DayKey()
		if index[day] == nil {
			index[day] = make(map[string]int)
		}
		pos, ok := index[day][a.URL]
		if !ok {
			index[day][a.URL] = len(buckets[day])
			buckets[day] = append(buckets[day], a)
			continue
		}
		if actionPriority[a.Action] > actionPriority[buckets[day][pos].Action] {
			buckets[day][pos] = a
		}
	}
	return buckets
}
