package story

import "testing"

func TestAssessment_ClampScores(t *testing.T) {
	a := Assessment{GrammarScore: -10, CreativityScore: 150, OverallScore: 78}
	a.ClampScores()

	if a.GrammarScore != 0 {
		t.Errorf("GrammarScore = %d, want 0", a.GrammarScore)
	}
	if a.CreativityScore != 100 {
		t.Errorf("CreativityScore = %d, want 100", a.CreativityScore)
	}
	if a.OverallScore != 78 {
		t.Errorf("OverallScore = %d, want 78", a.OverallScore)
	}
}
