package ai

import (
	"testing"

	"fable/pkg/errors"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.input); got != tt.want {
				t.Errorf("StripCodeFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseAssessment(t *testing.T) {
	raw := "```json\n" + `{"grammarScore": 85, "creativityScore": 92, "overallScore": 88, "feedback": "Lovely work!", "suggestions": ["add detail"], "strengths": ["imagination"]}` + "\n```"

	assessment, err := parseAssessment(raw)
	if err != nil {
		t.Fatalf("parseAssessment() error = %v", err)
	}

	if assessment.GrammarScore != 85 || assessment.CreativityScore != 92 || assessment.OverallScore != 88 {
		t.Errorf("unexpected scores: %+v", assessment)
	}
	if assessment.Feedback != "Lovely work!" {
		t.Errorf("Feedback = %q", assessment.Feedback)
	}
}

func TestParseAssessment_Malformed(t *testing.T) {
	for _, raw := range []string{
		"not json at all",
		`{"grammarScore": 85}`, // missing feedback
		"",
	} {
		if _, err := parseAssessment(raw); !errors.Is(err, errors.ErrMalformedReply) {
			t.Errorf("parseAssessment(%q) error = %v, want ErrMalformedReply", raw, err)
		}
	}
}

func TestNeutralAssessment(t *testing.T) {
	a := NeutralAssessment()

	if a.GrammarScore != 75 || a.CreativityScore != 80 || a.OverallScore != 78 {
		t.Errorf("unexpected neutral scores: %+v", a)
	}
	if a.Feedback == "" {
		t.Error("neutral assessment must carry feedback")
	}
	if len(a.Suggestions) == 0 || len(a.Strengths) == 0 {
		t.Error("neutral assessment must carry suggestions and strengths")
	}
}
