package costoptimizer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"fable/internal/adapters/ai"
	"fable/internal/domain/ai_usage"
	"fable/internal/domain/providercfg"
	"fable/internal/domain/story"
	"fable/internal/metrics"
	storysvc "fable/internal/services/story"
	"fable/pkg/logger"
)

// Cost model constants, USD. Illustrative averages used for savings
// reporting, not billing figures.
const (
	avgCostPerCall = 0.02

	// A plan call is longer than a normal turn; weighted at 1.5x.
	singleCallMultiplier = 1.5

	// Minimum word overlap for a cached prompt to substitute for a
	// fresh generation.
	similarityThreshold = 0.6
)

// Generator is the slice of the provider manager the optimizer needs.
type Generator interface {
	GenerateStoryResponse(ctx context.Context, sess storysvc.Session, req story.AIRequest) (story.AIResponse, error)
}

// Service reduces AI spend: one up-front plan call instead of a call
// per turn, cached-response reuse for similar prompts, and data-driven
// provider selection.
type Service struct {
	generator    Generator
	providerCfgs providercfg.Repository
	costMetrics  ai_usage.MetricsRepository
	log          *logger.Logger
}

// NewService creates a new cost optimizer service
func NewService(
	generator Generator,
	providerCfgs providercfg.Repository,
	costMetrics ai_usage.MetricsRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		generator:    generator,
		providerCfgs: providerCfgs,
		costMetrics:  costMetrics,
		log:          log,
	}
}

// GenerateStoryPlan makes a single premium-tier AI call that produces
// the opening, per-turn prompts and assessment rubric for a whole
// session. Never fails: any generation or parse problem fills in from
// the age-banded pre-written plan.
func (s *Service) GenerateStoryPlan(ctx context.Context, sess storysvc.Session, elements story.StoryElements, userAge int) story.StoryPlan {
	fallback := FallbackPlan(userAge)

	resp, err := s.generator.GenerateStoryResponse(ctx, sess, story.AIRequest{
		Model:         ai.TierPremium,
		Prompt:        planPrompt(elements, userAge),
		MaxTokens:     800,
		Temperature:   story.DefaultTemperature,
		UserAge:       userAge,
		StoryElements: elements,
	})
	if err != nil {
		s.log.Warnw("Plan generation failed, using fallback plan", "error", err)
		metrics.PlanGenerations.WithLabelValues("fallback").Inc()
		return fallback
	}

	var plan story.StoryPlan
	if err := json.Unmarshal([]byte(ai.StripCodeFences(resp.Content)), &plan); err != nil {
		s.log.Warnw("Plan reply not parseable, using fallback plan", "error", err)
		metrics.PlanGenerations.WithLabelValues("fallback").Inc()
		return fallback
	}

	// Field-level backfill: a partial plan is still worth keeping.
	if plan.Opening == "" {
		plan.Opening = fallback.Opening
	}
	if len(plan.Prompts) == 0 {
		plan.Prompts = fallback.Prompts
	}
	if plan.AssessmentCriteria == "" {
		plan.AssessmentCriteria = fallback.AssessmentCriteria
	}
	if plan.EstimatedTurns <= 0 {
		plan.EstimatedTurns = story.DefaultEstimatedTurns
	}

	metrics.PlanGenerations.WithLabelValues("generated").Inc()
	return plan
}

func planPrompt(elements story.StoryElements, userAge int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Create a complete story plan for a %d-year-old writer", userAge)
	if len(elements) > 0 {
		keys := make([]string, 0, len(elements))
		for k := range elements {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		sb.WriteString(" using these elements: ")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s=%s", k, elements[k])
		}
	}
	sb.WriteString(".\n\n")

	fmt.Fprintf(&sb, `Reply with ONLY a JSON object in exactly this shape:
{"opening": "<2-3 sentence story opening>", "prompts": [<%d short prompts, one per story turn>], "assessmentCriteria": "<what to look for when assessing the finished story>", "estimatedTurns": %d}`,
		story.DefaultEstimatedTurns, story.DefaultEstimatedTurns)

	return sb.String()
}

// CalculateCostSavings reports the estimated saving of the single-call
// plan strategy over one AI call per turn.
func (s *Service) CalculateCostSavings(estimatedTurns int) story.CostEstimate {
	if estimatedTurns <= 0 {
		estimatedTurns = story.DefaultEstimatedTurns
	}

	single := avgCostPerCall * singleCallMultiplier
	multi := float64(estimatedTurns) * avgCostPerCall
	savings := multi - single

	pct := 0.0
	if multi > 0 {
		pct = savings / multi * 100
	}

	return story.CostEstimate{
		SingleCallCost:    single,
		MultiCallCost:     multi,
		Savings:           savings,
		SavingsPercentage: pct,
	}
}

// PreGeneratedResponse returns the plan's prompt for a 1-based turn
// number. Out-of-range turns clamp to the nearest prompt so a story
// that runs long keeps getting guidance.
func (s *Service) PreGeneratedResponse(plan story.StoryPlan, turn int) string {
	if len(plan.Prompts) == 0 {
		return "What happens next in your story?"
	}

	idx := turn - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(plan.Prompts) {
		idx = len(plan.Prompts) - 1
	}

	return plan.Prompts[idx]
}

// ShouldUseCachedResponse decides whether a cached prompt is close
// enough to the writer's input to reuse instead of a live call.
func (s *Service) ShouldUseCachedResponse(input, cachedPrompt string) bool {
	if wordOverlap(input, cachedPrompt) > similarityThreshold {
		metrics.CachedResponseHits.WithLabelValues("similarity").Inc()
		return true
	}
	return false
}

// wordOverlap computes the Jaccard similarity of the two texts' word
// sets, case-insensitive.
func wordOverlap(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = struct{}{}
	}
	return set
}

// OptimizeProviderSelection picks the vendor for a request class from
// the active provider configuration records, cheapest first with
// latency as the tie-breaker. Known-good models are preferred when
// present; with no records at all the choice defaults to OpenAI.
func (s *Service) OptimizeProviderSelection(ctx context.Context, requestType string) string {
	configs, err := s.providerCfgs.ListActive(ctx)
	if err != nil {
		s.log.Warnw("Failed to list provider configs, defaulting provider", "error", err)
		return ai.ProviderNameOpenAI.String()
	}

	sort.SliceStable(configs, func(i, j int) bool {
		if configs[i].CostPerToken != configs[j].CostPerToken {
			return configs[i].CostPerToken < configs[j].CostPerToken
		}
		return configs[i].Performance.AverageResponseTime < configs[j].Performance.AverageResponseTime
	})

	switch requestType {
	case ai_usage.RequestTypeAssessment:
		if p := findModel(configs, ai.ProviderNameAnthropic, "opus"); p != "" {
			return p
		}
		if p := findModel(configs, ai.ProviderNameOpenAI, "gpt-4"); p != "" {
			return p
		}
	case ai_usage.RequestTypeGeneration, ai_usage.RequestTypePlan:
		if p := findModel(configs, ai.ProviderNameOpenAI, "nano"); p != "" {
			return p
		}
		if p := findModel(configs, ai.ProviderNameAnthropic, "haiku"); p != "" {
			return p
		}
	}

	if len(configs) > 0 {
		return configs[0].Provider
	}
	return ai.ProviderNameOpenAI.String()
}

func findModel(configs []providercfg.ProviderConfig, provider ai.ProviderName, modelSubstring string) string {
	for _, cfg := range configs {
		if cfg.Provider == provider.String() && strings.Contains(cfg.Model, modelSubstring) {
			return cfg.Provider
		}
	}
	return ""
}

// TrackCostMetrics bumps the user's daily spend aggregate for a
// request class. Best-effort: cost accounting must never fail a story
// interaction.
func (s *Service) TrackCostMetrics(ctx context.Context, userID string, costUSD float64, requestType string) {
	if s.costMetrics == nil || userID == "" {
		return
	}

	if err := s.costMetrics.IncrementDaily(ctx, userID, time.Now().UTC(), costUSD); err != nil {
		s.log.Errorw("Failed to track cost metrics",
			"user_id", userID,
			"request_type", requestType,
			"error", err,
		)
		return
	}

	s.log.Debugw("Tracked cost",
		"user_id", userID,
		"request_type", requestType,
		"cost_usd", costUSD,
	)
}
