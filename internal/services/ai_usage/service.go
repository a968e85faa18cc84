package ai_usage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fable/internal/domain/ai_usage"
	chrepo "fable/internal/repository/clickhouse"
	"fable/pkg/errors"
	"fable/pkg/logger"
)

// Service handles AI usage tracking business logic
// Provides abstraction over ClickHouse batch writer and Redis daily
// aggregates
type Service struct {
	repository *chrepo.AIUsageRepository
	metrics    ai_usage.MetricsRepository
	log        *logger.Logger
}

// RecordParams describes one completed AI call.
type RecordParams struct {
	UserID           string
	SessionID        string
	UserAge          int
	RequestType      string
	Provider         string
	ModelID          string
	PromptTokens     uint32
	CompletionTokens uint32
	CostUSD          float64
	FallbackUsed     bool
	StaticResponse   bool
	Latency          time.Duration
}

// NewService creates a new AI usage service
func NewService(
	repository *chrepo.AIUsageRepository,
	metrics ai_usage.MetricsRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		repository: repository,
		metrics:    metrics,
		log:        log,
	}
}

// Start starts the background batch writer
func (s *Service) Start(ctx context.Context) {
	s.log.Info("Starting AI usage service batch writer...")
	s.repository.Start(ctx)
}

// Stop stops the batch writer gracefully
func (s *Service) Stop(ctx context.Context) error {
	s.log.Info("Stopping AI usage service batch writer...")
	if err := s.repository.Stop(ctx); err != nil {
		return errors.Wrap(err, "failed to stop batch writer")
	}
	s.log.Info("✓ AI usage service stopped")
	return nil
}

// Record buffers a usage log entry and bumps the user's daily
// aggregate. Best-effort: failures are logged and never surface to the
// story pipeline.
func (s *Service) Record(ctx context.Context, params RecordParams) {
	now := time.Now().UTC()

	entry := &ai_usage.UsageLog{
		Timestamp:        now,
		EventID:          uuid.NewString(),
		UserID:           params.UserID,
		SessionID:        params.SessionID,
		UserAge:          uint8(params.UserAge),
		RequestType:      params.RequestType,
		Provider:         params.Provider,
		ModelID:          params.ModelID,
		PromptTokens:     params.PromptTokens,
		CompletionTokens: params.CompletionTokens,
		TotalTokens:      params.PromptTokens + params.CompletionTokens,
		CostUSD:          params.CostUSD,
		FallbackUsed:     params.FallbackUsed,
		StaticResponse:   params.StaticResponse,
		LatencyMs:        uint32(params.Latency.Milliseconds()),
		CreatedAt:        now,
	}

	if err := s.Store(ctx, entry); err != nil {
		s.log.Errorf("failed to store usage log for user %s: %v", params.UserID, err)
	}

	if s.metrics != nil && params.UserID != "" {
		if err := s.metrics.IncrementDaily(ctx, params.UserID, now, params.CostUSD); err != nil {
			s.log.Errorf("failed to increment daily cost for user %s: %v", params.UserID, err)
		}
	}
}

// Store adds an AI usage log to the batch
// Buffered operation - will flush when batch is full or timeout
func (s *Service) Store(ctx context.Context, log *ai_usage.UsageLog) error {
	if s.repository == nil {
		return nil
	}

	if err := s.repository.Store(ctx, log); err != nil {
		return errors.Wrap(err, "failed to store AI usage log")
	}

	s.log.Debugw("AI usage log buffered",
		"request_type", log.RequestType,
		"provider", log.Provider,
		"model", log.ModelID,
		"tokens", log.TotalTokens,
		"cost_usd", log.CostUSD,
	)

	return nil
}

// DailySpend returns the user's aggregate for the day containing ts.
// Used for billing dashboards and spend alerts.
func (s *Service) DailySpend(ctx context.Context, userID string, ts time.Time) (ai_usage.DailyMetrics, error) {
	if s.metrics == nil {
		return ai_usage.DailyMetrics{UserID: userID}, nil
	}
	return s.metrics.GetDaily(ctx, userID, ts)
}
