package ai_usage

import "time"

// Request classes tracked for cost accounting.
const (
	RequestTypeGeneration = "generation"
	RequestTypeAssessment = "assessment"
	RequestTypePlan       = "plan"
)

// UsageLog represents a single AI call made on behalf of a writer.
type UsageLog struct {
	Timestamp time.Time `ch:"timestamp"`
	EventID   string    `ch:"event_id"`

	// User context
	UserID    string `ch:"user_id"`
	SessionID string `ch:"session_id"`
	UserAge   uint8  `ch:"user_age"`

	// Request class
	RequestType string `ch:"request_type"` // generation, assessment, plan

	// Model details
	Provider string `ch:"provider"` // openai, anthropic, google
	ModelID  string `ch:"model_id"` // vendor model string

	// Token usage (character-count estimates)
	PromptTokens     uint32 `ch:"prompt_tokens"`
	CompletionTokens uint32 `ch:"completion_tokens"`
	TotalTokens      uint32 `ch:"total_tokens"`

	// Cost estimate
	CostUSD float64 `ch:"cost_usd"`

	// Cascade outcome
	FallbackUsed   bool `ch:"fallback_used"`
	StaticResponse bool `ch:"static_response"`

	// Performance
	LatencyMs uint32 `ch:"latency_ms"`

	CreatedAt time.Time `ch:"created_at"`
}

// DailyMetrics is the per-user per-day aggregate kept in the metrics
// store, keyed by the day truncated to midnight UTC.
type DailyMetrics struct {
	UserID       string
	Day          time.Time
	RequestCount int64
	CostUSD      float64
}
