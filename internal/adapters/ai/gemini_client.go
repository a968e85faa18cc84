package ai

import (
	"context"
	"time"

	"google.golang.org/genai"

	"fable/internal/domain/story"
	"fable/pkg/errors"
	"fable/pkg/logger"
)

// Ensure GeminiClient implements Client
var _ Client = (*GeminiClient)(nil)

// GeminiClient implements the Google integration using the official
// genai SDK.
type GeminiClient struct {
	client  *genai.Client
	timeout time.Duration
	limiter *TokenBucketLimiter
	log     *logger.Logger
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(apiKey string, timeout time.Duration, limiter *TokenBucketLimiter) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "gemini API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create genai client")
	}

	return &GeminiClient{
		client:  client,
		timeout: timeout,
		limiter: limiter,
		log:     logger.Get().With("component", "gemini_client"),
	}, nil
}

// Name returns the provider name.
func (c *GeminiClient) Name() ProviderName { return ProviderNameGoogle }

// ResolveModel maps an abstract tier to a concrete Gemini model.
func (c *GeminiClient) ResolveModel(tier string) string {
	switch tier {
	case TierPremium:
		return ModelGeminiPro
	case TierStandard:
		return ModelGeminiLite
	default:
		return ModelGeminiLite
	}
}

// GenerateResponse sends a story continuation request.
func (c *GeminiClient) GenerateResponse(ctx context.Context, req story.AIRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.client.Models.GenerateContent(ctx,
		c.ResolveModel(req.Model),
		genai.Text(buildStoryPrompt(req)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction(req.UserAge), genai.RoleUser),
			Temperature:       genai.Ptr(float32(req.Temperature)),
			MaxOutputTokens:   int32(req.MaxTokens),
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "gemini generate content failed")
	}

	text := result.Text()
	if text == "" {
		c.log.Warn("gemini returned empty completion, substituting encouragement")
		return encouragingFallback, nil
	}

	return text, nil
}

// AssessStory requests a structured story assessment.
func (c *GeminiClient) AssessStory(ctx context.Context, content string, userAge int) (story.Assessment, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return story.Assessment{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.client.Models.GenerateContent(ctx,
		c.ResolveModel(TierPremium),
		genai.Text(assessmentPrompt(content, userAge)),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(float32(0.3)),
			MaxOutputTokens: 500,
		},
	)
	if err != nil {
		return story.Assessment{}, errors.Wrap(err, "gemini assessment failed")
	}

	assessment, err := parseAssessment(result.Text())
	if err != nil {
		c.log.Warnf("gemini assessment reply unparsable, using neutral fallback: %v", err)
		return NeutralAssessment(), nil
	}

	return assessment, nil
}
