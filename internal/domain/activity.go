// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"strings"
	"time"
)

// Action is the normalized kind of a review activity.
type Action string

const (
	ActionApproved         Action = "APPROVED"
	ActionChangesRequested Action = "CHANGES_REQUESTED"
	ActionCommented        Action = "COMMENTED"
	ActionOther            Action = "OTHER"
)

// ParseAction maps a GitHub review state onto an Action.
// The REST API reports states in upper case, the event feed in lower case.
func ParseAction(state string) Action {
	switch Action(strings.ToUpper(strings.TrimSpace(state))) {
	case ActionApproved:
		return ActionApproved
	case ActionChangesRequested:
		return ActionChangesRequested
	case ActionCommented:
		return ActionCommented
	default:
		return ActionOther
	}
}

// Activity is a single review or comment a user left on a pull request.
// It is the core domain entity of this application.
type Activity struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Action    Action    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

// DayKey returns the calendar day the activity belongs to, as YYYY-MM-DD in UTC.
func (a Activity) DayKey() string {
	return a.CreatedAt.UTC().Format(DayLayout)
}

// DayLayout is the layout of DayBuckets keys.
const DayLayout = "2006-01-02"

// DayBuckets maps a calendar day to the activities of that day,
// holding at most one activity per pull request URL.
type DayBuckets map[string][]Activity

// Len returns the number of activities across all days.
func (b DayBuckets) Len() int {
	n := 0
	for _, activities := range b {
		n += len(activities)
	}
	return n
}
