package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordGeneration(t *testing.T) {
	RecordGeneration("openai", "gpt-4.1-nano", "primary", 800*time.Millisecond, 0.004, 40, 60)

	if got := testutil.ToFloat64(GenerationRequests.WithLabelValues("openai", "gpt-4.1-nano", "primary")); got != 1 {
		t.Errorf("generation requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(GenerationCost.WithLabelValues("openai", "gpt-4.1-nano", "generation")); got != 0.004 {
		t.Errorf("generation cost = %v, want 0.004", got)
	}
	if got := testutil.ToFloat64(GenerationTokens.WithLabelValues("openai", "gpt-4.1-nano", "prompt")); got != 40 {
		t.Errorf("prompt tokens = %v, want 40", got)
	}
	if got := testutil.ToFloat64(GenerationTokens.WithLabelValues("openai", "gpt-4.1-nano", "completion")); got != 60 {
		t.Errorf("completion tokens = %v, want 60", got)
	}
}

func TestRecordAssessment(t *testing.T) {
	RecordAssessment("anthropic", false)
	RecordAssessment("anthropic", true)

	if got := testutil.ToFloat64(AssessmentRequests.WithLabelValues("anthropic", "parsed")); got != 1 {
		t.Errorf("parsed assessments = %v, want 1", got)
	}
	if got := testutil.ToFloat64(AssessmentRequests.WithLabelValues("anthropic", "neutral")); got != 1 {
		t.Errorf("neutral assessments = %v, want 1", got)
	}
}

func TestRecordProviderAPICall(t *testing.T) {
	RecordProviderAPICall("google", 100*time.Millisecond, nil)
	RecordProviderAPICall("google", 100*time.Millisecond, errors.New("timeout"))

	if got := testutil.ToFloat64(ProviderAPICalls.WithLabelValues("google", "success")); got != 1 {
		t.Errorf("successful calls = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ProviderAPICalls.WithLabelValues("google", "error")); got != 1 {
		t.Errorf("failed calls = %v, want 1", got)
	}
}

func TestRecordDBQuery(t *testing.T) {
	RecordDBQuery("redis", "daily_cost_increment", 2*time.Millisecond, nil)
	RecordDBQuery("redis", "daily_cost_increment", 2*time.Millisecond, errors.New("conn refused"))

	if got := testutil.ToFloat64(DBQueries.WithLabelValues("redis", "daily_cost_increment", "success")); got != 1 {
		t.Errorf("successful queries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(DBQueries.WithLabelValues("redis", "daily_cost_increment", "error")); got != 1 {
		t.Errorf("failed queries = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	if Handler() == nil {
		t.Fatal("scrape handler should not be nil")
	}
}
