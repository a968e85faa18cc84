package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fable/internal/domain/ai_usage"
	"fable/internal/metrics"
	"fable/pkg/errors"
)

const (
	dailyCostField    = "cost_usd"
	dailyRequestField = "requests"

	// Aggregates are kept long enough for monthly reporting.
	dailyMetricsTTL = 45 * 24 * time.Hour
)

// DailyCostRepository implements ai_usage.MetricsRepository with an
// upsert-by-day hash per user.
type DailyCostRepository struct {
	client *redis.Client
}

// NewDailyCostRepository creates a new daily cost repository
func NewDailyCostRepository(client *redis.Client) *DailyCostRepository {
	return &DailyCostRepository{client: client}
}

// IncrementDaily adds one request and its cost to the user's aggregate
// for the day containing ts.
func (r *DailyCostRepository) IncrementDaily(ctx context.Context, userID string, ts time.Time, costUSD float64) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("redis", "daily_cost_increment", time.Since(start), err) }()

	key := dailyKey(userID, ts)

	pipe := r.client.TxPipeline()
	pipe.HIncrByFloat(ctx, key, dailyCostField, costUSD)
	pipe.HIncrBy(ctx, key, dailyRequestField, 1)
	pipe.Expire(ctx, key, dailyMetricsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "failed to increment daily cost for user %s", userID)
	}

	return nil
}

// GetDaily returns the aggregate for the day containing ts. A missing
// key reads as a zero aggregate.
func (r *DailyCostRepository) GetDaily(ctx context.Context, userID string, ts time.Time) (daily ai_usage.DailyMetrics, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("redis", "daily_cost_get", time.Since(start), err) }()

	key := dailyKey(userID, ts)

	daily = ai_usage.DailyMetrics{
		UserID: userID,
		Day:    truncateToDay(ts),
	}

	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return ai_usage.DailyMetrics{}, errors.Wrapf(err, "failed to get daily metrics for user %s", userID)
	}

	if raw, ok := fields[dailyCostField]; ok {
		if _, err := fmt.Sscanf(raw, "%f", &daily.CostUSD); err != nil {
			return ai_usage.DailyMetrics{}, errors.Wrapf(err, "malformed cost field for user %s", userID)
		}
	}
	if raw, ok := fields[dailyRequestField]; ok {
		if _, err := fmt.Sscanf(raw, "%d", &daily.RequestCount); err != nil {
			return ai_usage.DailyMetrics{}, errors.Wrapf(err, "malformed request field for user %s", userID)
		}
	}

	return daily, nil
}

func dailyKey(userID string, ts time.Time) string {
	return fmt.Sprintf("ai_costs:%s:%s", userID, truncateToDay(ts).Format("2006-01-02"))
}

// truncateToDay truncates a timestamp to midnight UTC.
func truncateToDay(ts time.Time) time.Time {
	return ts.UTC().Truncate(24 * time.Hour)
}
