package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"fable/internal/domain/story"
	"fable/pkg/errors"
	"fable/pkg/logger"
)

const anthropicAPIURL = "https://api.anthropic.com/v1/messages"

// Ensure AnthropicClient implements Client
var _ Client = (*AnthropicClient)(nil)

// AnthropicClient implements the Anthropic integration. There is no
// official Go SDK; the messages API is called directly.
type AnthropicClient struct {
	apiKey  string
	timeout time.Duration
	limiter *TokenBucketLimiter
	log     *logger.Logger
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(apiKey string, timeout time.Duration, limiter *TokenBucketLimiter) *AnthropicClient {
	return &AnthropicClient{
		apiKey:  apiKey,
		timeout: timeout,
		limiter: limiter,
		log:     logger.Get().With("component", "anthropic_client"),
	}
}

// Name returns the provider name.
func (c *AnthropicClient) Name() ProviderName { return ProviderNameAnthropic }

// ResolveModel maps an abstract tier to a concrete Anthropic model.
func (c *AnthropicClient) ResolveModel(tier string) string {
	switch tier {
	case TierPremium:
		return ModelOpus
	case TierStandard:
		return ModelHaiku
	default:
		return ModelHaiku
	}
}

// Anthropic API types
type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicResponse struct {
	ID         string             `json:"id"`
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
}

// GenerateResponse sends a story continuation request.
func (c *AnthropicClient) GenerateResponse(ctx context.Context, req story.AIRequest) (string, error) {
	text, err := c.complete(ctx, anthropicRequest{
		Model:       c.ResolveModel(req.Model),
		System:      systemInstruction(req.UserAge),
		Messages:    []anthropicMessage{{Role: "user", Content: buildStoryPrompt(req)}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", err
	}

	if text == "" {
		c.log.Warn("anthropic returned empty completion, substituting encouragement")
		return encouragingFallback, nil
	}

	return text, nil
}

// AssessStory requests a structured story assessment.
func (c *AnthropicClient) AssessStory(ctx context.Context, content string, userAge int) (story.Assessment, error) {
	text, err := c.complete(ctx, anthropicRequest{
		Model:       c.ResolveModel(TierPremium),
		Messages:    []anthropicMessage{{Role: "user", Content: assessmentPrompt(content, userAge)}},
		MaxTokens:   500,
		Temperature: 0.3,
	})
	if err != nil {
		return story.Assessment{}, err
	}

	result, err := parseAssessment(text)
	if err != nil {
		c.log.Warnf("anthropic assessment reply unparsable, using neutral fallback: %v", err)
		return NeutralAssessment(), nil
	}

	return result, nil
}

// complete performs one messages-API call and returns the joined text
// content blocks.
func (c *AnthropicClient) complete(ctx context.Context, apiReq anthropicRequest) (string, error) {
	if c.apiKey == "" {
		return "", errors.Wrap(errors.ErrInvalidInput, "anthropic API key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return "", errors.Wrap(err, "marshal anthropic request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "create HTTP request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "send anthropic request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read anthropic response")
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Type != "" {
			return "", errors.Wrapf(errors.ErrExternal, "anthropic API error (%d): %s - %s",
				resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return "", errors.Wrapf(errors.ErrExternal, "anthropic API error (%d): %s",
			resp.StatusCode, string(respBody))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", errors.Wrap(err, "unmarshal anthropic response")
	}

	var text string
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			if text != "" {
				text += "\n"
			}
			text += block.Text
		}
	}

	return text, nil
}
