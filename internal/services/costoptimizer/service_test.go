package costoptimizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fable/internal/domain/ai_usage"
	"fable/internal/domain/providercfg"
	"fable/internal/domain/story"
	storysvc "fable/internal/services/story"
	"fable/pkg/errors"
	"fable/pkg/logger"
)

func testLogger() *logger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return &logger.Logger{SugaredLogger: zapLogger.Sugar()}
}

// stubGenerator returns a fixed response or error.
type stubGenerator struct {
	content string
	err     error
	lastReq story.AIRequest
}

func (g *stubGenerator) GenerateStoryResponse(_ context.Context, _ storysvc.Session, req story.AIRequest) (story.AIResponse, error) {
	g.lastReq = req
	if g.err != nil {
		return story.AIResponse{}, g.err
	}
	return story.AIResponse{Content: g.content}, nil
}

// stubConfigRepo serves a fixed config list.
type stubConfigRepo struct {
	configs []providercfg.ProviderConfig
	err     error
}

func (r *stubConfigRepo) ListActive(_ context.Context) ([]providercfg.ProviderConfig, error) {
	return r.configs, r.err
}

func (r *stubConfigRepo) Save(_ context.Context, _ providercfg.ProviderConfig) error { return nil }

// metricsSpy records daily-spend increments and can fail on demand.
type metricsSpy struct {
	incrementErr error
	calls        int
	lastUser     string
	lastCost     float64
}

func (m *metricsSpy) IncrementDaily(_ context.Context, userID string, _ time.Time, costUSD float64) error {
	m.calls++
	m.lastUser = userID
	m.lastCost = costUSD
	return m.incrementErr
}

func (m *metricsSpy) GetDaily(_ context.Context, _ string, _ time.Time) (ai_usage.DailyMetrics, error) {
	return ai_usage.DailyMetrics{}, nil
}

func newTestService(gen Generator, repo providercfg.Repository) *Service {
	return NewService(gen, repo, nil, testLogger())
}

func TestCalculateCostSavings(t *testing.T) {
	svc := newTestService(nil, nil)

	est := svc.CalculateCostSavings(6)

	assert.InDelta(t, 0.03, est.SingleCallCost, 1e-9)
	assert.InDelta(t, 0.12, est.MultiCallCost, 1e-9)
	assert.InDelta(t, 0.09, est.Savings, 1e-9)
	assert.InDelta(t, 75.0, est.SavingsPercentage, 1e-9)
}

func TestCalculateCostSavings_DefaultTurns(t *testing.T) {
	svc := newTestService(nil, nil)

	assert.Equal(t, svc.CalculateCostSavings(story.DefaultEstimatedTurns), svc.CalculateCostSavings(0))
	assert.Equal(t, svc.CalculateCostSavings(story.DefaultEstimatedTurns), svc.CalculateCostSavings(-3))
}

func TestPreGeneratedResponse(t *testing.T) {
	svc := newTestService(nil, nil)
	plan := story.StoryPlan{Prompts: []string{"first", "second", "third"}}

	assert.Equal(t, "first", svc.PreGeneratedResponse(plan, 1))
	assert.Equal(t, "third", svc.PreGeneratedResponse(plan, 3))

	// Out-of-range turns clamp to the nearest prompt
	assert.Equal(t, "first", svc.PreGeneratedResponse(plan, 0))
	assert.Equal(t, "first", svc.PreGeneratedResponse(plan, -2))
	assert.Equal(t, "third", svc.PreGeneratedResponse(plan, 99))

	// Empty plan still yields guidance
	assert.Equal(t, "What happens next in your story?", svc.PreGeneratedResponse(story.StoryPlan{}, 1))
}

func TestShouldUseCachedResponse(t *testing.T) {
	svc := newTestService(nil, nil)

	assert.True(t, svc.ShouldUseCachedResponse(
		"the dragon flew over the castle",
		"the dragon flew over the castle",
	))
	assert.True(t, svc.ShouldUseCachedResponse(
		"the dragon flew over the old castle",
		"the dragon flew over the castle",
	))
	assert.False(t, svc.ShouldUseCachedResponse(
		"a pirate ship sailed the seas",
		"the dragon flew over the castle",
	))
	assert.False(t, svc.ShouldUseCachedResponse("", "the dragon flew"))
	assert.False(t, svc.ShouldUseCachedResponse("", ""))
}

func TestWordOverlap(t *testing.T) {
	// Identical sets
	assert.InDelta(t, 1.0, wordOverlap("a b c", "c b a"), 1e-9)

	// Half overlap: {a,b} vs {b,c} -> 1/3
	assert.InDelta(t, 1.0/3.0, wordOverlap("a b", "b c"), 1e-9)

	// Case-insensitive
	assert.InDelta(t, 1.0, wordOverlap("The Dragon", "the dragon"), 1e-9)

	// Empty text never matches
	assert.Zero(t, wordOverlap("", "a b"))
}

func TestGenerateStoryPlan_ParsesReply(t *testing.T) {
	gen := &stubGenerator{content: "```json\n" + `{
		"opening": "Deep in the jungle, a map appeared.",
		"prompts": ["p1", "p2", "p3", "p4", "p5", "p6"],
		"assessmentCriteria": "plot and creativity",
		"estimatedTurns": 6
	}` + "\n```"}

	svc := newTestService(gen, nil)
	plan := svc.GenerateStoryPlan(context.Background(), storysvc.Session{}, story.StoryElements{story.ElementGenre: "adventure"}, 9)

	assert.Equal(t, "Deep in the jungle, a map appeared.", plan.Opening)
	assert.Len(t, plan.Prompts, 6)
	assert.Equal(t, "plot and creativity", plan.AssessmentCriteria)
	assert.Equal(t, 6, plan.EstimatedTurns)

	// The plan call asks for a long premium completion
	assert.Equal(t, 800, gen.lastReq.MaxTokens)
	assert.Equal(t, "premium", gen.lastReq.Model)
}

func TestGenerateStoryPlan_FallbackOnError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("vendor down")}

	svc := newTestService(gen, nil)
	plan := svc.GenerateStoryPlan(context.Background(), storysvc.Session{}, nil, 5)

	require.NotEmpty(t, plan.Opening)
	assert.Equal(t, FallbackPlan(5), plan)
	assert.Len(t, plan.Prompts, story.DefaultEstimatedTurns)
}

func TestGenerateStoryPlan_FallbackOnUnparsableReply(t *testing.T) {
	gen := &stubGenerator{content: "once upon a time, no JSON here"}

	svc := newTestService(gen, nil)
	plan := svc.GenerateStoryPlan(context.Background(), storysvc.Session{}, nil, 15)

	assert.Equal(t, FallbackPlan(15), plan)
}

func TestGenerateStoryPlan_BackfillsPartialReply(t *testing.T) {
	gen := &stubGenerator{content: `{"opening": "A fine start."}`}

	svc := newTestService(gen, nil)
	plan := svc.GenerateStoryPlan(context.Background(), storysvc.Session{}, nil, 9)

	fallback := FallbackPlan(9)
	assert.Equal(t, "A fine start.", plan.Opening)
	assert.Equal(t, fallback.Prompts, plan.Prompts)
	assert.Equal(t, fallback.AssessmentCriteria, plan.AssessmentCriteria)
	assert.Equal(t, story.DefaultEstimatedTurns, plan.EstimatedTurns)
}

func TestOptimizeProviderSelection_Generation(t *testing.T) {
	repo := &stubConfigRepo{configs: []providercfg.ProviderConfig{
		{Provider: "anthropic", Model: "claude-3-5-haiku-latest", IsActive: true, CostPerToken: 0.0000008},
		{Provider: "openai", Model: "gpt-4.1-nano", IsActive: true, CostPerToken: 0.0000002},
	}}

	svc := newTestService(nil, repo)
	assert.Equal(t, "openai", svc.OptimizeProviderSelection(context.Background(), "generation"))
}

func TestOptimizeProviderSelection_GenerationPrefersHaikuWithoutNano(t *testing.T) {
	repo := &stubConfigRepo{configs: []providercfg.ProviderConfig{
		{Provider: "anthropic", Model: "claude-3-5-haiku-latest", IsActive: true, CostPerToken: 0.0000008},
		{Provider: "openai", Model: "gpt-4.1", IsActive: true, CostPerToken: 0.000004},
	}}

	svc := newTestService(nil, repo)
	assert.Equal(t, "anthropic", svc.OptimizeProviderSelection(context.Background(), "generation"))
}

func TestOptimizeProviderSelection_Assessment(t *testing.T) {
	repo := &stubConfigRepo{configs: []providercfg.ProviderConfig{
		{Provider: "openai", Model: "gpt-4.1-nano", IsActive: true, CostPerToken: 0.0000002},
		{Provider: "anthropic", Model: "claude-3-opus-latest", IsActive: true, CostPerToken: 0.000015},
	}}

	svc := newTestService(nil, repo)
	assert.Equal(t, "anthropic", svc.OptimizeProviderSelection(context.Background(), "assessment"))
}

func TestOptimizeProviderSelection_CheapestWhenNoPreferredModel(t *testing.T) {
	repo := &stubConfigRepo{configs: []providercfg.ProviderConfig{
		{Provider: "google", Model: "gemini-1.5-pro", IsActive: true, CostPerToken: 0.0000035},
		{Provider: "google", Model: "gemini-2.0-flash", IsActive: true, CostPerToken: 0.0000002},
	}}

	svc := newTestService(nil, repo)
	assert.Equal(t, "google", svc.OptimizeProviderSelection(context.Background(), "generation"))
}

func TestOptimizeProviderSelection_LatencyTieBreak(t *testing.T) {
	repo := &stubConfigRepo{configs: []providercfg.ProviderConfig{
		{Provider: "google", Model: "gemini-2.0-flash", IsActive: true, CostPerToken: 0.0000002,
			Performance: providercfg.Performance{AverageResponseTime: 2 * time.Second}},
		{Provider: "anthropic", Model: "claude-sonnet", IsActive: true, CostPerToken: 0.0000002,
			Performance: providercfg.Performance{AverageResponseTime: time.Second}},
	}}

	svc := newTestService(nil, repo)
	assert.Equal(t, "anthropic", svc.OptimizeProviderSelection(context.Background(), "generation"))
}

func TestOptimizeProviderSelection_PlanUsesGenerationPreferences(t *testing.T) {
	repo := &stubConfigRepo{configs: []providercfg.ProviderConfig{
		{Provider: "anthropic", Model: "claude-3-opus-latest", IsActive: true, CostPerToken: 0.000015},
		{Provider: "openai", Model: "gpt-4.1-nano", IsActive: true, CostPerToken: 0.0000002},
	}}

	svc := newTestService(nil, repo)
	assert.Equal(t, "openai", svc.OptimizeProviderSelection(context.Background(), ai_usage.RequestTypePlan))
}

func TestOptimizeProviderSelection_Defaults(t *testing.T) {
	svc := newTestService(nil, &stubConfigRepo{})
	assert.Equal(t, "openai", svc.OptimizeProviderSelection(context.Background(), "generation"))

	svc = newTestService(nil, &stubConfigRepo{err: errors.New("redis down")})
	assert.Equal(t, "openai", svc.OptimizeProviderSelection(context.Background(), "assessment"))
}

func TestTrackCostMetrics(t *testing.T) {
	spy := &metricsSpy{}
	svc := NewService(nil, nil, spy, testLogger())

	svc.TrackCostMetrics(context.Background(), "user-1", 0.02, ai_usage.RequestTypePlan)

	assert.Equal(t, 1, spy.calls)
	assert.Equal(t, "user-1", spy.lastUser)
	assert.InDelta(t, 0.02, spy.lastCost, 1e-9)
}

func TestTrackCostMetrics_SkipsAnonymousUsers(t *testing.T) {
	spy := &metricsSpy{}
	svc := NewService(nil, nil, spy, testLogger())

	svc.TrackCostMetrics(context.Background(), "", 0.02, ai_usage.RequestTypeGeneration)

	assert.Zero(t, spy.calls)
}

func TestTrackCostMetrics_SwallowsStoreErrors(t *testing.T) {
	spy := &metricsSpy{incrementErr: errors.New("redis down")}
	svc := NewService(nil, nil, spy, testLogger())

	// Cost accounting never fails the caller
	svc.TrackCostMetrics(context.Background(), "user-1", 0.02, ai_usage.RequestTypeGeneration)

	assert.Equal(t, 1, spy.calls)
}

func TestFallbackPlan_AllBandsComplete(t *testing.T) {
	for _, age := range []int{4, 9, 16} {
		plan := FallbackPlan(age)
		assert.NotEmpty(t, plan.Opening, "age %d", age)
		assert.Len(t, plan.Prompts, story.DefaultEstimatedTurns, "age %d", age)
		assert.NotEmpty(t, plan.AssessmentCriteria, "age %d", age)
		assert.Equal(t, story.DefaultEstimatedTurns, plan.EstimatedTurns, "age %d", age)
	}
}
