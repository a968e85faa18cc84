package story

import "time"

// ResponseType is a cosmetic classification attached to continuations.
// It is drawn from a weighted distribution, not derived from the
// generated text.
type ResponseType string

const (
	ResponseContinue     ResponseType = "continue"
	ResponsePlotTwist    ResponseType = "plot_twist"
	ResponseNewCharacter ResponseType = "new_character"
	ResponseChallenge    ResponseType = "challenge"
)

// AIResponse is the normalized output of a generation call.
// TokensUsed and CostUSD are character-count estimates, not
// vendor-billed figures.
type AIResponse struct {
	Content      string
	Provider     string
	Model        string
	TokensUsed   int
	CostUSD      float64
	ResponseTime time.Duration
	ResponseType ResponseType
	Timestamp    time.Time
}

// Assessment is the structured result of a story assessment. Scores
// are 0-100 integers.
type Assessment struct {
	GrammarScore    int      `json:"grammarScore"`
	CreativityScore int      `json:"creativityScore"`
	OverallScore    int      `json:"overallScore"`
	Feedback        string   `json:"feedback"`
	Suggestions     []string `json:"suggestions"`
	Strengths       []string `json:"strengths"`
}

// ClampScores forces all scores into [0,100].
func (a *Assessment) ClampScores() {
	a.GrammarScore = clampScore(a.GrammarScore)
	a.CreativityScore = clampScore(a.CreativityScore)
	a.OverallScore = clampScore(a.OverallScore)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
