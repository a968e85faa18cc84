package ai

import (
	"context"

	"fable/internal/domain/story"
)

// Client defines the contract each vendor implementation must satisfy.
// Implementations are independent units behind this two-operation
// capability set; nothing above this layer branches on vendor type.
type Client interface {
	Name() ProviderName

	// GenerateResponse builds a vendor-specific prompt from the request
	// and returns the raw continuation text. It returns an error on
	// vendor/network failure (the caller owns retry and fallback) and
	// substitutes a generic encouraging line only when the vendor
	// returns empty content.
	GenerateResponse(ctx context.Context, req story.AIRequest) (string, error)

	// AssessStory requests a structured JSON assessment of the story
	// text. Parse failures degrade to a neutral assessment rather than
	// an error; vendor call failures are returned to the caller.
	AssessStory(ctx context.Context, content string, userAge int) (story.Assessment, error)

	// ResolveModel maps an abstract model tier to this vendor's
	// concrete model string. Unknown tiers resolve to the cheapest
	// supported model.
	ResolveModel(tier string) string
}
