// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/gh-review-activity/internal/config"
	"github.com/naka-gawa/gh-review-activity/internal/domain"
)

const userAgent = "gh-review-activity"

// Fetcher defines the behavior of a gateway for fetching review activity from GitHub.
type Fetcher interface {
	// FetchActivities returns the reviews and pull request comments user left
	// during the last daysBack days.
	FetchActivities(ctx context.Context, user string, daysBack int) ([]domain.Activity, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	mode          string
	logger        *zap.Logger
	now           func() time.Time
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// The token is taken from cfg; the gateway never reads the environment itself.
func NewGitHubGateway(cfg config.GitHubConfig, logger *zap.Logger) (Fetcher, error) {
	var base http.RoundTripper = http.DefaultTransport
	if cfg.WaitOnRateLimit {
		rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
		}
		base = rateLimitWaiter
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   base,
			Source: ts,
		},
	}
	restClient := github.NewClient(httpClient)
	restClient.UserAgent = userAgent
	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: githubv4.NewClient(httpClient),
		mode:          cfg.Mode,
		logger:        logger,
		now:           time.Now,
	}, nil
}

// FetchActivities dispatches to the strategy selected by the configured mode.
func (g *GitHubGateway) FetchActivities(ctx context.Context, user string, daysBack int) ([]domain.Activity, error) {
	since := g.now().AddDate(0, 0, -daysBack)
	switch g.mode {
	case config.ModeEvents:
		return g.FetchFromEvents(ctx, user, since)
	case config.ModeSearch, "":
		return g.FetchFromSearch(ctx, user, since)
	case config.ModeGraphQL:
		return g.FetchFromGraphQL(ctx, user, since)
	default:
		return nil, fmt.Errorf("unknown fetch mode %q", g.mode)
	}
}

// APIError reports a non-success response from the GitHub API.
// Errors and DocumentationURL carry the detail of the response body.
type APIError struct {
	Op               string
	StatusCode       int
	Status           string
	Message          string
	Errors           []string
	DocumentationURL string
	Err              error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: GitHub API returned %s", e.Op, e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if len(e.Errors) > 0 {
		msg += ": " + strings.Join(e.Errors, "; ")
	}
	if e.DocumentationURL != "" {
		msg += " (see " + e.DocumentationURL + ")"
	}
	return msg
}

func (e *APIError) Unwrap() error { return e.Err }

// wrapError turns go-github response errors into *APIError and wraps everything
// else with op.
func wrapError(op string, err error) error {
	var (
		errResp  *github.ErrorResponse
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
		resp     *http.Response
		message  string
		details  []string
		docURL   string
	)
	switch {
	case errors.As(err, &errResp):
		resp, message, docURL = errResp.Response, errResp.Message, errResp.DocumentationURL
		for _, e := range errResp.Errors {
			if e.Message != "" {
				details = append(details, e.Message)
			} else {
				details = append(details, e.Error())
			}
		}
	case errors.As(err, &rateErr):
		resp, message = rateErr.Response, rateErr.Message
	case errors.As(err, &abuseErr):
		resp, message = abuseErr.Response, abuseErr.Message
	}
	if resp == nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return &APIError{
		Op:               op,
		StatusCode:       resp.StatusCode,
		Status:           status,
		Message:          message,
		Errors:           details,
		DocumentationURL: docURL,
		Err:              err,
	}
}

// isAPIError reports whether err carries a non-success HTTP response.
func isAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
