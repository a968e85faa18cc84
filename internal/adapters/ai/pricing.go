package ai

// Cost-per-1000-tokens table, USD. Configuration data, not logic:
// kept as a single map so price updates never touch calculation code.
// These feed the best-effort cost estimates stamped on responses and
// are not vendor-billed figures.
var costPer1K = map[ProviderName]map[string]float64{
	ProviderNameOpenAI: {
		ModelGPTNano: 0.0002,
		ModelGPT41:   0.004,
	},
	ProviderNameAnthropic: {
		ModelHaiku: 0.0008,
		ModelOpus:  0.015,
	},
	ProviderNameGoogle: {
		ModelGeminiLite: 0.0002,
		ModelGeminiPro:  0.0035,
	},
}

// DefaultCostPer1K is used for any model missing from the table.
const DefaultCostPer1K = 0.001

// CostPer1K returns the cost per 1000 tokens for a provider+model.
func CostPer1K(provider ProviderName, model string) float64 {
	if models, ok := costPer1K[provider]; ok {
		if cost, ok := models[model]; ok {
			return cost
		}
	}
	return DefaultCostPer1K
}

// EstimateTokens approximates token usage from character counts using
// the common chars/4 heuristic, rounding up.
func EstimateTokens(promptLen, responseLen int) int {
	total := promptLen + responseLen
	return (total + 3) / 4
}

// EstimateCost converts an estimated token count to USD.
func EstimateCost(provider ProviderName, model string, tokens int) float64 {
	return float64(tokens) / 1000.0 * CostPer1K(provider, model)
}
