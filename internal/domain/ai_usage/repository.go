package ai_usage

import (
	"context"
	"time"
)

// Repository defines operations for the per-request usage event log.
type Repository interface {
	// Store saves a usage log entry.
	Store(ctx context.Context, log *UsageLog) error
}

// MetricsRepository defines the daily aggregate store.
type MetricsRepository interface {
	// IncrementDaily adds one request and its cost to the user's
	// aggregate for the day containing ts.
	IncrementDaily(ctx context.Context, userID string, ts time.Time, costUSD float64) error

	// GetDaily returns the aggregate for the day containing ts.
	GetDaily(ctx context.Context, userID string, ts time.Time) (DailyMetrics, error)
}
