package story

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"fable/internal/adapters/ai"
	"fable/internal/adapters/config"
	"fable/internal/adapters/contentfilter"
	"fable/internal/adapters/retry"
	"fable/internal/domain/ai_usage"
	"fable/internal/domain/story"
	"fable/internal/metrics"
	usagesvc "fable/internal/services/ai_usage"
	"fable/pkg/errors"
	"fable/pkg/logger"
)

// Session identifies the writer on whose behalf AI calls are made.
// Used for cost accounting only.
type Session struct {
	UserID    string
	SessionID string
}

// Route selects a vendor and an abstract model tier.
type Route struct {
	Provider ai.ProviderName
	Tier     string
}

// Routing is the full provider selection: which vendor handles
// generation, which one backs it up, and which one assesses.
type Routing struct {
	Primary    Route
	Fallback   Route
	Assessment Route
}

// RoutingFromConfig builds the initial routing from environment
// configuration.
func RoutingFromConfig(cfg config.AIConfig) Routing {
	return Routing{
		Primary: Route{
			Provider: ai.ProviderName(ai.NormalizeProviderName(cfg.PrimaryProvider)),
			Tier:     cfg.PrimaryModel,
		},
		Fallback: Route{
			Provider: ai.ProviderName(ai.NormalizeProviderName(cfg.FallbackProvider)),
			Tier:     cfg.FallbackModel,
		},
		Assessment: Route{
			Provider: ai.ProviderName(ai.NormalizeProviderName(cfg.AssessmentProvider)),
			Tier:     cfg.AssessmentModel,
		},
	}
}

// UsageRecorder receives per-call usage records. Recording is
// best-effort and never blocks the generation path on errors.
type UsageRecorder interface {
	Record(ctx context.Context, params usagesvc.RecordParams)
}

// Service is the provider manager: it owns routing, the retry and
// fallback cascade, content filtering and usage accounting for every
// AI call made on behalf of a writer.
type Service struct {
	registry *ai.Registry
	filter   *contentfilter.Filter
	retrier  *retry.Middleware
	usage    UsageRecorder
	log      *logger.Logger

	mu      sync.RWMutex
	routing Routing
}

// NewService creates a new provider manager service
func NewService(
	registry *ai.Registry,
	filter *contentfilter.Filter,
	retrier *retry.Middleware,
	usage UsageRecorder,
	routing Routing,
	log *logger.Logger,
) *Service {
	if retrier == nil {
		retrier = retry.New(retry.DefaultConfig())
	}
	if filter == nil {
		filter = contentfilter.New()
	}

	return &Service{
		registry: registry,
		filter:   filter,
		retrier:  retrier,
		usage:    usage,
		routing:  routing,
		log:      log,
	}
}

// Routing returns the current routing selection.
func (s *Service) Routing() Routing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routing
}

// UpdateRouting swaps the routing selection. Providers must be valid
// vendor names; the target clients need not be registered, requests to
// an unregistered primary surface ErrProviderNotConfigured.
func (s *Service) UpdateRouting(routing Routing) error {
	for _, route := range []Route{routing.Primary, routing.Fallback, routing.Assessment} {
		if !route.Provider.IsValid() {
			return errors.Wrapf(errors.ErrInvalidInput, "unknown provider %q", route.Provider)
		}
	}

	s.mu.Lock()
	s.routing = routing
	s.mu.Unlock()

	s.log.Infow("Routing updated",
		"primary", routing.Primary.Provider,
		"fallback", routing.Fallback.Provider,
		"assessment", routing.Assessment.Provider,
	)
	return nil
}

// GenerateStoryResponse runs the full generation cascade: primary
// vendor with retries, then one fallback attempt, then a canned
// response. The only error it surfaces is a primary provider that was
// never configured; everything past that point degrades instead of
// failing.
func (s *Service) GenerateStoryResponse(ctx context.Context, sess Session, req story.AIRequest) (story.AIResponse, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return story.AIResponse{}, err
	}

	routing := s.Routing()
	primary := routing.Primary
	// Vendor selection always belongs to routing; callers may only pick
	// a model tier.
	if req.Model != "" {
		primary.Tier = req.Model
	}
	req.Provider = primary.Provider.String()
	req.Model = primary.Tier

	client, err := s.registry.Get(primary.Provider)
	if err != nil {
		return story.AIResponse{}, err
	}

	start := time.Now()

	content, err := retry.DoWithResult(ctx, s.retrier, func() (string, error) {
		callStart := time.Now()
		text, callErr := client.GenerateResponse(ctx, req)
		metrics.RecordProviderAPICall(primary.Provider.String(), time.Since(callStart), callErr)
		return text, callErr
	})
	if err == nil {
		return s.finalize(ctx, sess, req, primary, client, content, start, "primary"), nil
	}

	s.log.Warnw("Primary provider exhausted retries",
		"provider", primary.Provider,
		"error", err,
	)

	if resp, ok := s.tryFallback(ctx, sess, req, primary, routing.Fallback, start); ok {
		return resp, nil
	}

	return s.staticResponse(ctx, sess, req, primary, start), nil
}

// tryFallback gives the fallback vendor exactly one attempt. A
// fallback pointing at the vendor that just failed is skipped.
func (s *Service) tryFallback(ctx context.Context, sess Session, req story.AIRequest, primary, fallback Route, start time.Time) (story.AIResponse, bool) {
	if fallback.Provider == primary.Provider {
		return story.AIResponse{}, false
	}

	client, err := s.registry.Get(fallback.Provider)
	if err != nil {
		return story.AIResponse{}, false
	}

	fbReq := req
	fbReq.Provider = fallback.Provider.String()
	fbReq.Model = fallback.Tier

	callStart := time.Now()
	content, err := client.GenerateResponse(ctx, fbReq)
	metrics.RecordProviderAPICall(fallback.Provider.String(), time.Since(callStart), err)
	if err != nil {
		s.log.Warnw("Fallback provider failed",
			"provider", fallback.Provider,
			"error", err,
		)
		return story.AIResponse{}, false
	}

	return s.finalize(ctx, sess, fbReq, fallback, client, content, start, "fallback"), true
}

// finalize filters the raw vendor text, stamps estimates, draws the
// response type and records usage.
func (s *Service) finalize(ctx context.Context, sess Session, req story.AIRequest, route Route, client ai.Client, content string, start time.Time, outcome string) story.AIResponse {
	filtered := s.filter.FilterResponse(content, req.UserAge)

	model := client.ResolveModel(route.Tier)
	tokens := ai.EstimateTokens(len(req.Prompt), len(filtered))
	cost := ai.EstimateCost(route.Provider, model, tokens)
	elapsed := time.Since(start)

	resp := story.AIResponse{
		Content:      filtered,
		Provider:     route.Provider.String(),
		Model:        model,
		TokensUsed:   tokens,
		CostUSD:      cost,
		ResponseTime: elapsed,
		ResponseType: drawResponseType(),
		Timestamp:    time.Now().UTC(),
	}

	promptTokens := ai.EstimateTokens(len(req.Prompt), 0)
	s.recordUsage(ctx, sess, req, usagesvc.RecordParams{
		RequestType:      ai_usage.RequestTypeGeneration,
		Provider:         resp.Provider,
		ModelID:          resp.Model,
		PromptTokens:     uint32(promptTokens),
		CompletionTokens: uint32(tokens - promptTokens),
		CostUSD:          cost,
		FallbackUsed:     outcome == "fallback",
		Latency:          elapsed,
	})
	metrics.RecordGeneration(resp.Provider, resp.Model, outcome, elapsed, cost, promptTokens, tokens-promptTokens)

	return resp
}

// staticResponse is the terminal rung of the cascade: a canned line
// with zero tokens and zero cost, stamped with the primary route so
// callers still see where the request was headed.
func (s *Service) staticResponse(ctx context.Context, sess Session, req story.AIRequest, route Route, start time.Time) story.AIResponse {
	content := staticResponses[rand.Intn(len(staticResponses))]
	elapsed := time.Since(start)

	resp := story.AIResponse{
		Content:      s.filter.FilterResponse(content, req.UserAge),
		Provider:     route.Provider.String(),
		Model:        route.Tier,
		TokensUsed:   0,
		CostUSD:      0,
		ResponseTime: elapsed,
		ResponseType: story.ResponseContinue,
		Timestamp:    time.Now().UTC(),
	}

	s.recordUsage(ctx, sess, req, usagesvc.RecordParams{
		RequestType:    ai_usage.RequestTypeGeneration,
		Provider:       resp.Provider,
		ModelID:        resp.Model,
		FallbackUsed:   true,
		StaticResponse: true,
		Latency:        elapsed,
	})
	metrics.RecordGeneration(resp.Provider, resp.Model, "static", elapsed, 0, 0, 0)

	return resp
}

// AssessStory returns a structured assessment of the story text. It
// never fails: any vendor or routing problem degrades to the neutral
// assessment.
func (s *Service) AssessStory(ctx context.Context, sess Session, content string, userAge int) (story.Assessment, error) {
	routing := s.Routing()
	start := time.Now()

	client, err := s.registry.Get(routing.Assessment.Provider)
	if err != nil {
		s.log.Warnw("Assessment provider not configured, using neutral assessment",
			"provider", routing.Assessment.Provider,
		)
		metrics.RecordAssessment(routing.Assessment.Provider.String(), true)
		return ai.NeutralAssessment(), nil
	}

	assessment, err := client.AssessStory(ctx, content, userAge)
	metrics.RecordProviderAPICall(routing.Assessment.Provider.String(), time.Since(start), err)
	if err != nil {
		s.log.Warnw("Assessment call failed, using neutral assessment",
			"provider", routing.Assessment.Provider,
			"error", err,
		)
		assessment = ai.NeutralAssessment()
	}

	assessment.ClampScores()
	assessment.Feedback = s.filter.EnsurePositiveTone(assessment.Feedback)
	assessment.Feedback = s.filter.FilterResponse(assessment.Feedback, userAge)

	model := client.ResolveModel(routing.Assessment.Tier)
	tokens := ai.EstimateTokens(len(content), 0)
	cost := ai.EstimateCost(routing.Assessment.Provider, model, tokens)
	elapsed := time.Since(start)

	s.recordUsage(ctx, sess, story.AIRequest{UserAge: userAge}, usagesvc.RecordParams{
		RequestType:  ai_usage.RequestTypeAssessment,
		Provider:     routing.Assessment.Provider.String(),
		ModelID:      model,
		PromptTokens: uint32(tokens),
		CostUSD:      cost,
		Latency:      elapsed,
	})
	metrics.RecordAssessment(routing.Assessment.Provider.String(), err != nil)

	return assessment, nil
}

func (s *Service) recordUsage(ctx context.Context, sess Session, req story.AIRequest, params usagesvc.RecordParams) {
	if s.usage == nil {
		return
	}

	params.UserID = sess.UserID
	params.SessionID = sess.SessionID
	params.UserAge = req.UserAge
	s.usage.Record(ctx, params)
}

// Response type weights: continue 30%, plot twist 25%, new character
// 25%, challenge 20%.
func drawResponseType() story.ResponseType {
	return responseTypeFor(rand.Float64())
}

// responseTypeFor maps a uniform [0,1) roll onto the weighted
// response type distribution.
func responseTypeFor(roll float64) story.ResponseType {
	switch {
	case roll < 0.30:
		return story.ResponseContinue
	case roll < 0.55:
		return story.ResponsePlotTwist
	case roll < 0.80:
		return story.ResponseNewCharacter
	default:
		return story.ResponseChallenge
	}
}
