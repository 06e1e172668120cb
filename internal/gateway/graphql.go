package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/gh-review-activity/internal/domain"
)

// reviewSearchQuery fetches matching pull requests together with the reviews
// the user submitted and the latest conversation comments.
type reviewSearchQuery struct {
	Search struct {
		PageInfo struct {
			HasNextPage bool
			EndCursor   githubv4.String
		}
		Nodes []struct {
			Typename    string `graphql:"__typename"`
			PullRequest struct {
				Title   string
				URL     string
				Reviews struct {
					Nodes []struct {
						State       githubv4.PullRequestReviewState
						SubmittedAt githubv4.DateTime
					}
				} `graphql:"reviews(first: 100, author: $login)"`
				Comments struct {
					Nodes []struct {
						CreatedAt githubv4.DateTime
						Author    struct {
							Login string
						}
					}
				} `graphql:"comments(last: 100)"`
			} `graphql:"... on PullRequest"`
		}
	} `graphql:"search(query: $query, type: ISSUE, first: 25, after: $cursor)"`
}

// graphqlPR is one pull request with its items already mapped.
type graphqlPR struct {
	url   string
	items []sourceItem
}

// FetchFromGraphQL runs the reviewed-by and commenter searches through the
// GraphQL API, reading reviews and comments in the same round trip.
func (g *GitHubGateway) FetchFromGraphQL(ctx context.Context, user string, since time.Time) ([]domain.Activity, error) {
	queries := searchQueries(user, since)
	results := make([][]graphqlPR, len(queries))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, query := range queries {
		g.logger.Info("Searching pull requests via GraphQL",
			zap.String("query", query),
			zap.String("since", since.UTC().Format(time.RFC3339)),
		)
		eg.Go(func() error {
			var err error
			results[i], err = g.searchReviewActivity(egCtx, query, user)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var items []sourceItem
	for _, prs := range results {
		for _, pr := range prs {
			if _, ok := seen[pr.url]; ok {
				continue
			}
			seen[pr.url] = struct{}{}
			items = append(items, pr.items...)
		}
	}

	w := window{since: since}
	activities := w.collect(items)
	g.logger.Debug("Completed fetching pull request activity via GraphQL.", zap.Int("activities", len(activities)))
	return activities, nil
}

func (g *GitHubGateway) searchReviewActivity(ctx context.Context, query, user string) ([]graphqlPR, error) {
	variables := map[string]interface{}{
		"query":  githubv4.String(query),
		"login":  githubv4.String(user),
		"cursor": (*githubv4.String)(nil),
	}

	var prs []graphqlPR
	for {
		var q reviewSearchQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL search %q: %w", query, err)
		}

		for _, node := range q.Search.Nodes {
			if node.Typename != "PullRequest" {
				continue
			}
			pr := node.PullRequest
			t := target{title: pr.Title, url: pr.URL}
			entry := graphqlPR{url: pr.URL}
			for _, review := range pr.Reviews.Nodes {
				entry.items = append(entry.items, graphqlReview{
					target: t,
					state:  string(review.State),
					at:     review.SubmittedAt.Time,
				})
			}
			for _, comment := range pr.Comments.Nodes {
				if strings.EqualFold(comment.Author.Login, user) {
					entry.items = append(entry.items, graphqlComment{target: t, at: comment.CreatedAt.Time})
				}
			}
			prs = append(prs, entry)
		}

		if !q.Search.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Search.PageInfo.EndCursor)
		g.logger.Debug("  Fetching next page of pull requests via GraphQL...", zap.String("query", query))
	}
	return prs, nil
}
