package gateway

import (
	"strings"
	"time"

	"github.com/google/go-github/v62/github"

	"github.com/naka-gawa/gh-review-activity/internal/domain"
)

// sourceItem is one raw GitHub record that may describe a review action.
// Each kind knows how to map itself to a domain.Activity; ok is false when the
// record does not concern a pull request.
type sourceItem interface {
	activity() (a domain.Activity, ok bool)
}

// target identifies the pull request an item belongs to.
type target struct {
	title string
	url   string
}

func prTarget(pr *github.PullRequest) target {
	return target{title: pr.GetTitle(), url: pr.GetHTMLURL()}
}

func issueTarget(issue *github.Issue) target {
	return target{title: issue.GetTitle(), url: issue.GetHTMLURL()}
}

// submittedReview is a review submission, as returned by the reviews endpoint or
// carried by a PullRequestReviewEvent. at overrides the submission time when set.
type submittedReview struct {
	target target
	review *github.PullRequestReview
	at     time.Time
}

func (r submittedReview) activity() (domain.Activity, bool) {
	at := r.at
	if at.IsZero() {
		at = r.review.GetSubmittedAt().Time
	}
	return domain.Activity{
		Title:     r.target.title,
		URL:       r.target.url,
		Action:    domain.ParseAction(r.review.GetState()),
		CreatedAt: at,
	}, true
}

// reviewComment is a comment on a pull request diff.
type reviewComment struct {
	target  target
	comment *github.PullRequestComment
	at      time.Time
}

func (c reviewComment) activity() (domain.Activity, bool) {
	at := c.at
	if at.IsZero() {
		at = c.comment.GetCreatedAt().Time
	}
	return domain.Activity{
		Title:     c.target.title,
		URL:       c.target.url,
		Action:    domain.ActionCommented,
		CreatedAt: at,
	}, true
}

// issueComment is a conversation comment. Only comments on pull requests count.
type issueComment struct {
	issue   *github.Issue
	comment *github.IssueComment
	at      time.Time
}

func (c issueComment) activity() (domain.Activity, bool) {
	if c.issue == nil || !c.issue.IsPullRequest() {
		return domain.Activity{}, false
	}
	at := c.at
	if at.IsZero() {
		at = c.comment.GetCreatedAt().Time
	}
	t := issueTarget(c.issue)
	return domain.Activity{
		Title:     t.title,
		URL:       t.url,
		Action:    domain.ActionCommented,
		CreatedAt: at,
	}, true
}

// graphqlReview is a review node from the GraphQL search.
type graphqlReview struct {
	target target
	state  string
	at     time.Time
}

func (r graphqlReview) activity() (domain.Activity, bool) {
	return domain.Activity{
		Title:     r.target.title,
		URL:       r.target.url,
		Action:    domain.ParseAction(r.state),
		CreatedAt: r.at,
	}, true
}

// graphqlComment is a conversation comment node from the GraphQL search.
type graphqlComment struct {
	target target
	at     time.Time
}

func (c graphqlComment) activity() (domain.Activity, bool) {
	return domain.Activity{
		Title:     c.target.title,
		URL:       c.target.url,
		Action:    domain.ActionCommented,
		CreatedAt: c.at,
	}, true
}

// window keeps activities that happened strictly after since.
type window struct {
	since time.Time
}

// collect maps items to activities, dropping those outside the window or
// without a title or URL.
func (w window) collect(items []sourceItem) []domain.Activity {
	activities := make([]domain.Activity, 0, len(items))
	for _, item := range items {
		a, ok := item.activity()
		if !ok || !w.contains(a.CreatedAt) {
			continue
		}
		if strings.TrimSpace(a.Title) == "" || a.URL == "" {
			continue
		}
		activities = append(activities, a)
	}
	return activities
}

func (w window) contains(t time.Time) bool {
	return t.After(w.since)
}
