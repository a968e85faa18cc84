package ai

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"fable/internal/domain/story"
	"fable/pkg/errors"
	"fable/pkg/logger"
)

// Ensure OpenAIClient implements Client
var _ Client = (*OpenAIClient)(nil)

// OpenAIClient implements the OpenAI integration using the official SDK.
type OpenAIClient struct {
	client  openai.Client
	timeout time.Duration
	limiter *TokenBucketLimiter
	log     *logger.Logger
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(apiKey string, timeout time.Duration, limiter *TokenBucketLimiter) *OpenAIClient {
	return &OpenAIClient{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		timeout: timeout,
		limiter: limiter,
		log:     logger.Get().With("component", "openai_client"),
	}
}

// Name returns the provider name.
func (c *OpenAIClient) Name() ProviderName { return ProviderNameOpenAI }

// ResolveModel maps an abstract tier to a concrete OpenAI model.
func (c *OpenAIClient) ResolveModel(tier string) string {
	switch tier {
	case TierPremium:
		return ModelGPT41
	case TierStandard:
		return ModelGPTNano
	default:
		return ModelGPTNano
	}
}

// GenerateResponse sends a story continuation request.
func (c *OpenAIClient) GenerateResponse(ctx context.Context, req story.AIRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.ResolveModel(req.Model)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemInstruction(req.UserAge)),
			openai.UserMessage(buildStoryPrompt(req)),
		},
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		return "", errors.Wrap(err, "openai chat completion failed")
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.log.Warn("openai returned empty completion, substituting encouragement")
		return encouragingFallback, nil
	}

	return resp.Choices[0].Message.Content, nil
}

// AssessStory requests a structured story assessment.
func (c *OpenAIClient) AssessStory(ctx context.Context, content string, userAge int) (story.Assessment, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return story.Assessment{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.ResolveModel(TierPremium)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(assessmentPrompt(content, userAge)),
		},
		MaxTokens:   openai.Int(500),
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return story.Assessment{}, errors.Wrap(err, "openai assessment failed")
	}

	if len(resp.Choices) == 0 {
		return NeutralAssessment(), nil
	}

	result, err := parseAssessment(resp.Choices[0].Message.Content)
	if err != nil {
		c.log.Warnf("openai assessment reply unparsable, using neutral fallback: %v", err)
		return NeutralAssessment(), nil
	}

	return result, nil
}
