package ai

import "strings"

// ProviderName represents an AI vendor identifier
type ProviderName string

// Provider name constants
const (
	ProviderNameOpenAI    ProviderName = "openai"
	ProviderNameAnthropic ProviderName = "anthropic"
	ProviderNameGoogle    ProviderName = "google"
)

// String returns the string representation of the provider name
func (p ProviderName) String() string {
	return string(p)
}

// IsValid checks if the provider name is supported
func (p ProviderName) IsValid() bool {
	switch p {
	case ProviderNameOpenAI, ProviderNameAnthropic, ProviderNameGoogle:
		return true
	default:
		return false
	}
}

// AllProviderNames returns all supported provider names
func AllProviderNames() []ProviderName {
	return []ProviderName{
		ProviderNameOpenAI,
		ProviderNameAnthropic,
		ProviderNameGoogle,
	}
}

// Abstract model tiers. Callers select a tier; each vendor client maps
// it to a concrete model string, defaulting unknown tiers to the
// cheapest supported model.
const (
	TierStandard = "standard" // cheap/fast
	TierPremium  = "premium"  // quality
)

// Concrete vendor model identifiers
const (
	ModelGPTNano    = "gpt-4.1-nano"
	ModelGPT41      = "gpt-4.1"
	ModelHaiku      = "claude-3-5-haiku-latest"
	ModelOpus       = "claude-3-opus-latest"
	ModelGeminiLite = "gemini-2.0-flash"
	ModelGeminiPro  = "gemini-1.5-pro"
)

// NormalizeProviderName makes provider lookup more forgiving.
func NormalizeProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
