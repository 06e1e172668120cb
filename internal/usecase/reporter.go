// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/naka-gawa/gh-review-activity/internal/domain"
	"github.com/naka-gawa/gh-review-activity/internal/gateway"
)

// Reporter is the use case for building a review activity report.
// It orchestrates fetching activities and grouping them by day.
type Reporter struct {
	fetcher gateway.Fetcher
	logger  *zap.Logger
}

// NewReporter creates a new Reporter instance.
func NewReporter(fetcher gateway.Fetcher, logger *zap.Logger) *Reporter {
	return &Reporter{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Report fetches user's review activity of the last daysBack days and groups it by day.
func (r *Reporter) Report(ctx context.Context, user string, daysBack int) (domain.DayBuckets, error) {
	r.logger.Debug("Usecase: Starting report...", zap.String("user", user), zap.Int("days_back", daysBack))

	activities, err := r.fetcher.FetchActivities(ctx, user, daysBack)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review activity for %s: %w", user, err)
	}
	r.logger.Debug("Usecase: Activities fetched.", zap.Int("count", len(activities)))

	buckets := GroupByDay(activities)
	r.logger.Debug("Usecase: Report complete.", zap.Int("days", len(buckets)), zap.Int("activities", buckets.Len()))
	return buckets, nil
}
