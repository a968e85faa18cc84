package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"fable/internal/domain/ai_usage"
	"fable/internal/metrics"
	"fable/pkg/clickhouse"
	"fable/pkg/errors"
	"fable/pkg/logger"
)

// AIUsageRepository implements ai_usage.Repository for ClickHouse.
// Writes are buffered through a batch writer.
type AIUsageRepository struct {
	conn        driver.Conn
	batchWriter *clickhouse.BatchWriter
}

// NewAIUsageRepository creates a new AI usage repository
func NewAIUsageRepository(conn driver.Conn) *AIUsageRepository {
	repo := &AIUsageRepository{conn: conn}

	repo.batchWriter = clickhouse.NewBatchWriter(clickhouse.BatchWriterConfig{
		FlushFunc:    repo.flushBatch,
		TableName:    "ai_usage",
		MaxBatchSize: 500,
		MaxAge:       5 * time.Second,
	})

	return repo
}

// Start begins the background flush loop
func (r *AIUsageRepository) Start(ctx context.Context) {
	r.batchWriter.Start(ctx)
}

// Stop gracefully shuts down the batch writer
func (r *AIUsageRepository) Stop(ctx context.Context) error {
	return r.batchWriter.Stop(ctx)
}

// Store buffers a usage log entry for the next batch flush.
func (r *AIUsageRepository) Store(ctx context.Context, log *ai_usage.UsageLog) error {
	return r.batchWriter.Add(ctx, log)
}

func (r *AIUsageRepository) flushBatch(ctx context.Context, batch []interface{}) (err error) {
	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("clickhouse", "ai_usage_insert", time.Since(start), err) }()

	log := logger.Get().With("component", "ai_usage_batch")

	query := `
		INSERT INTO ai_usage (
			timestamp, event_id, user_id, session_id, user_age,
			request_type, provider, model_id,
			prompt_tokens, completion_tokens, total_tokens,
			cost_usd, fallback_used, static_response,
			latency_ms, created_at
		) VALUES (
			?, ?, ?, ?, ?,
			?, ?, ?,
			?, ?, ?,
			?, ?, ?,
			?, ?
		)
	`

	stmt, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}
	defer func() { _ = stmt.Close() }()

	for _, item := range batch {
		usageLog, ok := item.(*ai_usage.UsageLog)
		if !ok {
			log.Warnf("skipping invalid item type: %T", item)
			continue
		}

		err := stmt.Append(
			usageLog.Timestamp, usageLog.EventID, usageLog.UserID, usageLog.SessionID, usageLog.UserAge,
			usageLog.RequestType, usageLog.Provider, usageLog.ModelID,
			usageLog.PromptTokens, usageLog.CompletionTokens, usageLog.TotalTokens,
			usageLog.CostUSD, usageLog.FallbackUsed, usageLog.StaticResponse,
			usageLog.LatencyMs, usageLog.CreatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "failed to append usage log to batch")
		}
	}

	if err := stmt.Send(); err != nil {
		return errors.Wrap(err, "failed to send usage batch")
	}

	return nil
}
