package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"

	"github.com/naka-gawa/gh-review-activity/internal/domain"
)

// Event types that can carry review activity.
const (
	eventReview        = "PullRequestReviewEvent"
	eventReviewComment = "PullRequestReviewCommentEvent"
	eventIssueComment  = "IssueCommentEvent"
)

// FetchFromEvents reads the user's event feed, newest first, and stops at the
// first event older than since. GitHub keeps at most 300 events per user, so
// quiet windows far in the past may come back incomplete.
func (g *GitHubGateway) FetchFromEvents(ctx context.Context, user string, since time.Time) ([]domain.Activity, error) {
	g.logger.Info("Listing user events",
		zap.String("user", user),
		zap.String("since", since.UTC().Format(time.RFC3339)),
	)
	w := window{since: since}
	opts := &github.ListOptions{PerPage: 100}
	var items []sourceItem
	for {
		events, resp, err := g.restClient.Activity.ListEventsPerformedByUser(ctx, user, false, opts)
		if err != nil {
			return nil, wrapError("failed to list user events", err)
		}
		reachedEnd := false
		for _, event := range events {
			createdAt := event.GetCreatedAt().Time
			if !w.contains(createdAt) {
				reachedEnd = true
				break
			}
			item, err := eventItem(event)
			if err != nil {
				return nil, err
			}
			if item != nil {
				items = append(items, item)
			}
		}
		if reachedEnd || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug("Fetching next page of events...", zap.Int("page", opts.Page))
	}
	activities := w.collect(items)
	g.logger.Debug("Completed fetching events.", zap.Int("activities", len(activities)))
	return activities, nil
}

// eventItem maps an event onto its source item kind. It returns nil for event
// types that never describe review activity.
func eventItem(event *github.Event) (sourceItem, error) {
	switch event.GetType() {
	case eventReview, eventReviewComment, eventIssueComment:
	default:
		return nil, nil
	}
	payload, err := event.ParsePayload()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s payload: %w", event.GetType(), err)
	}
	at := event.GetCreatedAt().Time
	switch p := payload.(type) {
	case *github.PullRequestReviewEvent:
		if p.Review == nil {
			return nil, nil
		}
		return submittedReview{target: prTarget(p.PullRequest), review: p.Review, at: at}, nil
	case *github.PullRequestReviewCommentEvent:
		return reviewComment{target: prTarget(p.PullRequest), comment: p.Comment, at: at}, nil
	case *github.IssueCommentEvent:
		return issueComment{issue: p.Issue, comment: p.Comment, at: at}, nil
	}
	return nil, nil
}
