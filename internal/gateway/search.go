package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/gh-review-activity/internal/domain"
)

// searchQueries returns the issue search queries that find pull requests the
// user reviewed or commented on since the given day.
func searchQueries(user string, since time.Time) []string {
	day := since.UTC().Format("2006-01-02")
	return []string{
		fmt.Sprintf("is:pr reviewed-by:%s updated:>=%s", user, day),
		fmt.Sprintf("is:pr commenter:%s updated:>=%s", user, day),
	}
}

// FetchFromSearch searches pull requests the user reviewed or commented on and
// reads each one's reviews and comments. A lookup that fails without an HTTP
// response only drops that pull request; an error status aborts the fetch.
func (g *GitHubGateway) FetchFromSearch(ctx context.Context, user string, since time.Time) ([]domain.Activity, error) {
	queries := searchQueries(user, since)
	results := make([][]*github.Issue, len(queries))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, query := range queries {
		g.logger.Info("Searching pull requests",
			zap.String("query", query),
			zap.String("since", since.UTC().Format(time.RFC3339)),
		)
		eg.Go(func() error {
			var err error
			results[i], err = g.searchIssues(egCtx, query)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	prs := mergeIssues(results...)
	g.logger.Debug("Found pull requests.", zap.Int("count", len(prs)))

	w := window{since: since}
	var (
		items   []sourceItem
		skipped error
	)
	for _, pr := range prs {
		prItems, err := g.fetchPRActivity(ctx, user, pr, w)
		if err != nil {
			if isAPIError(err) || ctx.Err() != nil {
				return nil, err
			}
			g.logger.Warn("Skipping pull request", zap.String("url", pr.GetHTMLURL()), zap.Error(err))
			skipped = multierr.Append(skipped, fmt.Errorf("%s: %w", pr.GetHTMLURL(), err))
			continue
		}
		items = append(items, prItems...)
	}
	if skipped != nil {
		g.logger.Warn("Some pull requests could not be read.",
			zap.Int("skipped", len(multierr.Errors(skipped))),
			zap.Int("total", len(prs)),
		)
	}

	activities := w.collect(items)
	g.logger.Debug("Completed fetching pull request activity.", zap.Int("activities", len(activities)))
	return activities, nil
}

func (g *GitHubGateway) searchIssues(ctx context.Context, query string) ([]*github.Issue, error) {
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var issues []*github.Issue
	for {
		result, resp, err := g.restClient.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, wrapError("failed to search pull requests", err)
		}
		issues = append(issues, result.Issues...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug("  Fetching next page of search results...", zap.String("query", query))
	}
	return issues, nil
}

// mergeIssues concatenates search results, keeping the first occurrence of each
// pull request URL.
func mergeIssues(results ...[]*github.Issue) []*github.Issue {
	seen := make(map[string]struct{})
	var merged []*github.Issue
	for _, issues := range results {
		for _, issue := range issues {
			u := issue.GetHTMLURL()
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			merged = append(merged, issue)
		}
	}
	return merged
}

// fetchPRActivity reads the reviews and conversation comments of one pull
// request concurrently and returns those written by user.
func (g *GitHubGateway) fetchPRActivity(ctx context.Context, user string, pr *github.Issue, w window) ([]sourceItem, error) {
	owner, repo, err := repoFromURL(pr.GetRepositoryURL())
	if err != nil {
		return nil, err
	}
	number := pr.GetNumber()

	var (
		reviews  []*github.PullRequestReview
		comments []*github.IssueComment
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		reviews, err = g.listReviews(egCtx, owner, repo, number)
		return err
	})
	eg.Go(func() error {
		var err error
		comments, err = g.listIssueComments(egCtx, owner, repo, number, w.since)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	t := issueTarget(pr)
	var items []sourceItem
	for _, review := range reviews {
		if strings.EqualFold(review.GetUser().GetLogin(), user) {
			items = append(items, submittedReview{target: t, review: review})
		}
	}
	for _, comment := range comments {
		if strings.EqualFold(comment.GetUser().GetLogin(), user) {
			items = append(items, issueComment{issue: pr, comment: comment})
		}
	}
	return items, nil
}

func (g *GitHubGateway) listReviews(ctx context.Context, owner, repo string, number int) ([]*github.PullRequestReview, error) {
	opts := &github.ListOptions{PerPage: 100}
	var all []*github.PullRequestReview
	for {
		reviews, resp, err := g.restClient.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, wrapError(fmt.Sprintf("failed to list reviews of %s/%s#%d", owner, repo, number), err)
		}
		all = append(all, reviews...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

func (g *GitHubGateway) listIssueComments(ctx context.Context, owner, repo string, number int, since time.Time) ([]*github.IssueComment, error) {
	opts := &github.IssueListCommentsOptions{
		Since:       &since,
		ListOptions: github.ListOptions{PerPage: 100},
	}
	var all []*github.IssueComment
	for {
		comments, resp, err := g.restClient.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, wrapError(fmt.Sprintf("failed to list comments of %s/%s#%d", owner, repo, number), err)
		}
		all = append(all, comments...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

// repoFromURL extracts owner and repository name from an API repository URL
// such as https://api.github.com/repos/owner/repo.
func repoFromURL(repositoryURL string) (owner, repo string, err error) {
	u, err := url.Parse(repositoryURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid repository URL %q: %w", repositoryURL, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || parts[len(parts)-3] != "repos" {
		return "", "", fmt.Errorf("invalid repository URL %q", repositoryURL)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}
