package ai

import (
	"encoding/json"
	"strings"

	"fable/internal/domain/story"
	"fable/pkg/errors"
)

// StripCodeFences removes a surrounding markdown code fence from a
// vendor reply. Models frequently wrap JSON answers in ```json blocks
// even when told not to.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	return strings.TrimSpace(s)
}

// parseAssessment decodes the vendor's JSON assessment reply. The
// reply is untrusted free text; any deviation falls back wholesale.
func parseAssessment(raw string) (story.Assessment, error) {
	cleaned := StripCodeFences(raw)

	var result story.Assessment
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return story.Assessment{}, errors.Wrap(errors.ErrMalformedReply, err.Error())
	}

	if result.Feedback == "" {
		return story.Assessment{}, errors.Wrap(errors.ErrMalformedReply, "assessment missing feedback")
	}

	return result, nil
}

// NeutralAssessment is the fixed fallback substituted when a vendor
// assessment cannot be obtained or parsed. Assessment must never
// hard-fail a child-facing flow; a neutral score is an acceptable
// degraded answer.
func NeutralAssessment() story.Assessment {
	return story.Assessment{
		GrammarScore:    75,
		CreativityScore: 80,
		OverallScore:    78,
		Feedback:        "What a creative story! You're doing a great job with your writing.",
		Suggestions:     []string{"Keep practicing your writing", "Try adding more details to your story"},
		Strengths:       []string{"Great imagination", "Good story flow"},
	}
}
