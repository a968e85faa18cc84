package story

// DefaultEstimatedTurns is the number of exchanges a story plan covers.
const DefaultEstimatedTurns = 6

// StoryPlan is a single-call replacement for a multi-turn prompt
// sequence: one up-front AI call produces the opening, per-turn
// guidance, and the assessment rubric for an entire session.
// Plans are created once at story start and never mutated.
type StoryPlan struct {
	Opening            string   `json:"opening"`
	Prompts            []string `json:"prompts"`
	AssessmentCriteria string   `json:"assessmentCriteria"`
	EstimatedTurns     int      `json:"estimatedTurns"`
}

// CostEstimate reports the savings from the single-call plan strategy.
// Derived from a fixed assumed average cost per call; illustrative,
// not billing-accurate.
type CostEstimate struct {
	SingleCallCost    float64
	MultiCallCost     float64
	Savings           float64
	SavingsPercentage float64
}
