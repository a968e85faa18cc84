package metrics

import (
	"context"
	"time"

	"fable/pkg/logger"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// CustomCollector collects usage metrics from ClickHouse and Redis on
// scrape.
type CustomCollector struct {
	log        *logger.Logger
	clickhouse driver.Conn
	redis      *redis.Client

	// Descriptors
	usageRows24h    *prometheus.Desc
	usageCost24h    *prometheus.Desc
	fallbackRate24h *prometheus.Desc
	providerConfigs *prometheus.Desc
}

// NewCustomCollector creates a new custom metrics collector
func NewCustomCollector(log *logger.Logger, clickhouse driver.Conn, redis *redis.Client) *CustomCollector {
	return &CustomCollector{
		log:        log,
		clickhouse: clickhouse,
		redis:      redis,

		usageRows24h: prometheus.NewDesc(
			"fable_usage_requests_24h",
			"AI requests logged in the last 24h by request type",
			[]string{"request_type"}, nil,
		),
		usageCost24h: prometheus.NewDesc(
			"fable_usage_cost_usd_24h",
			"AI spend in USD over the last 24h by provider",
			[]string{"provider"}, nil,
		),
		fallbackRate24h: prometheus.NewDesc(
			"fable_fallback_requests_24h",
			"Requests served by fallback or static responses in the last 24h",
			[]string{"kind"}, // kind: fallback|static
			nil,
		),
		providerConfigs: prometheus.NewDesc(
			"fable_provider_configs",
			"Number of provider configuration records in Redis",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *CustomCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.usageRows24h
	ch <- c.usageCost24h
	ch <- c.fallbackRate24h
	ch <- c.providerConfigs
}

// Collect implements prometheus.Collector
func (c *CustomCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.collectUsageCounts(ctx, ch)
	c.collectUsageCost(ctx, ch)
	c.collectFallbackCounts(ctx, ch)
	c.collectProviderConfigCount(ctx, ch)
}

func (c *CustomCollector) collectUsageCounts(ctx context.Context, ch chan<- prometheus.Metric) {
	rows, err := c.clickhouse.Query(ctx, `
		SELECT request_type, COUNT(*) as count
		FROM ai_usage
		WHERE timestamp > now() - INTERVAL 24 HOUR
		GROUP BY request_type
	`)
	if err != nil {
		c.log.Error("Failed to collect usage counts", "error", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var requestType string
		var count uint64
		if err := rows.Scan(&requestType, &count); err != nil {
			c.log.Error("Failed to scan usage count row", "error", err)
			return
		}
		ch <- prometheus.MustNewConstMetric(
			c.usageRows24h,
			prometheus.GaugeValue,
			float64(count),
			requestType,
		)
	}
}

func (c *CustomCollector) collectUsageCost(ctx context.Context, ch chan<- prometheus.Metric) {
	rows, err := c.clickhouse.Query(ctx, `
		SELECT provider, SUM(cost_usd) as cost
		FROM ai_usage
		WHERE timestamp > now() - INTERVAL 24 HOUR
		GROUP BY provider
	`)
	if err != nil {
		c.log.Error("Failed to collect usage cost", "error", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var provider string
		var cost float64
		if err := rows.Scan(&provider, &cost); err != nil {
			c.log.Error("Failed to scan usage cost row", "error", err)
			return
		}
		ch <- prometheus.MustNewConstMetric(
			c.usageCost24h,
			prometheus.GaugeValue,
			cost,
			provider,
		)
	}
}

func (c *CustomCollector) collectFallbackCounts(ctx context.Context, ch chan<- prometheus.Metric) {
	var fallbacks, statics uint64
	err := c.clickhouse.QueryRow(ctx, `
		SELECT
			countIf(fallback_used) as fallbacks,
			countIf(static_response) as statics
		FROM ai_usage
		WHERE timestamp > now() - INTERVAL 24 HOUR
	`).Scan(&fallbacks, &statics)
	if err != nil {
		c.log.Error("Failed to collect fallback counts", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.fallbackRate24h, prometheus.GaugeValue, float64(fallbacks), "fallback")
	ch <- prometheus.MustNewConstMetric(c.fallbackRate24h, prometheus.GaugeValue, float64(statics), "static")
}

func (c *CustomCollector) collectProviderConfigCount(ctx context.Context, ch chan<- prometheus.Metric) {
	count, err := c.redis.SCard(ctx, "provider_config:index").Result()
	if err != nil {
		c.log.Error("Failed to collect provider config count", "error", err)
		return
	}

	ch <- prometheus.MustNewConstMetric(
		c.providerConfigs,
		prometheus.GaugeValue,
		float64(count),
	)
}

// RegisterCustomCollector registers the custom collector
func RegisterCustomCollector(collector *CustomCollector) {
	prometheus.MustRegister(collector)
}
