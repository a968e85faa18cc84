package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Generation metrics
	GenerationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fable_generation_requests_total",
			Help: "Total number of story generation requests",
		},
		[]string{"provider", "model", "outcome"}, // outcome: primary|fallback|static|error
	)

	GenerationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fable_generation_latency_seconds",
			Help:    "Story generation latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "model"},
	)

	GenerationCost = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fable_generation_cost_usd",
			Help: "Total AI cost in USD",
		},
		[]string{"provider", "model", "request_type"},
	)

	GenerationTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fable_generation_tokens_total",
			Help: "Total tokens used by AI calls",
		},
		[]string{"provider", "model", "type"}, // type: prompt|completion
	)

	// Assessment metrics
	AssessmentRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fable_assessment_requests_total",
			Help: "Total number of story assessment requests",
		},
		[]string{"provider", "outcome"}, // outcome: parsed|neutral
	)

	// Provider API metrics
	ProviderAPICalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fable_provider_api_calls_total",
			Help: "Total number of upstream provider API calls",
		},
		[]string{"provider", "status"}, // status: success|error|rate_limited
	)

	ProviderAPILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fable_provider_api_latency_seconds",
			Help:    "Upstream provider API latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider"},
	)

	// Cost optimizer metrics
	CachedResponseHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fable_cached_response_hits_total",
			Help: "Total pre-generated responses served instead of live calls",
		},
		[]string{"reason"}, // reason: similarity|fallback_plan
	)

	PlanGenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fable_plan_generations_total",
			Help: "Total story plan generations",
		},
		[]string{"outcome"}, // outcome: generated|fallback
	)

	// Database metrics
	DBQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fable_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"database", "operation", "status"}, // database: clickhouse|redis
	)

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fable_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"database", "operation"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	// Generation metrics
	prometheus.MustRegister(GenerationRequests)
	prometheus.MustRegister(GenerationLatency)
	prometheus.MustRegister(GenerationCost)
	prometheus.MustRegister(GenerationTokens)

	// Assessment metrics
	prometheus.MustRegister(AssessmentRequests)

	// Provider API metrics
	prometheus.MustRegister(ProviderAPICalls)
	prometheus.MustRegister(ProviderAPILatency)

	// Cost optimizer metrics
	prometheus.MustRegister(CachedResponseHits)
	prometheus.MustRegister(PlanGenerations)

	// Database metrics
	prometheus.MustRegister(DBQueries)
	prometheus.MustRegister(DBQueryDuration)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordGeneration records one completed generation request
func RecordGeneration(provider, model, outcome string, latency time.Duration, cost float64, promptTokens, completionTokens int) {
	GenerationRequests.WithLabelValues(provider, model, outcome).Inc()
	GenerationLatency.WithLabelValues(provider, model).Observe(latency.Seconds())

	if cost > 0 {
		GenerationCost.WithLabelValues(provider, model, "generation").Add(cost)
	}

	if promptTokens > 0 {
		GenerationTokens.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		GenerationTokens.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
	}
}

// RecordAssessment records one assessment request
func RecordAssessment(provider string, neutralFallback bool) {
	outcome := "parsed"
	if neutralFallback {
		outcome = "neutral"
	}
	AssessmentRequests.WithLabelValues(provider, outcome).Inc()
}

// RecordProviderAPICall records an upstream provider API call
func RecordProviderAPICall(provider string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	ProviderAPICalls.WithLabelValues(provider, status).Inc()
	ProviderAPILatency.WithLabelValues(provider).Observe(latency.Seconds())
}

// RecordDBQuery records a database query
func RecordDBQuery(database, operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	DBQueries.WithLabelValues(database, operation, status).Inc()
	DBQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
}
