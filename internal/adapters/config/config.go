package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"fable/pkg/errors"
)

type Config struct {
	App           AppConfig
	Redis         RedisConfig
	ClickHouse    ClickHouseConfig
	AI            AIConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"fable"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type ClickHouseConfig struct {
	Host     string `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD"`
	Database string `envconfig:"CLICKHOUSE_DB" default:"fable"`
}

func (c ClickHouseConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AIConfig holds vendor credentials and the default routing selection.
// Only vendors with a key present get a client constructed at startup.
type AIConfig struct {
	OpenAIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicKey string `envconfig:"ANTHROPIC_API_KEY"`
	GeminiKey    string `envconfig:"GEMINI_API_KEY"`

	PrimaryProvider    string `envconfig:"AI_PRIMARY_PROVIDER" default:"openai"`
	PrimaryModel       string `envconfig:"AI_PRIMARY_MODEL" default:"standard"`
	FallbackProvider   string `envconfig:"AI_FALLBACK_PROVIDER" default:"anthropic"`
	FallbackModel      string `envconfig:"AI_FALLBACK_MODEL" default:"standard"`
	AssessmentProvider string `envconfig:"AI_ASSESSMENT_PROVIDER" default:"anthropic"`
	AssessmentModel    string `envconfig:"AI_ASSESSMENT_MODEL" default:"premium"`

	RequestTimeout time.Duration `envconfig:"AI_REQUEST_TIMEOUT" default:"60s"`

	RateLimitEnabled   bool    `envconfig:"AI_RATE_LIMIT_ENABLED" default:"true"`
	RateLimitPerMinute float64 `envconfig:"AI_RATE_LIMIT_PER_MINUTE" default:"500"`
	RateLimitBurst     int     `envconfig:"AI_RATE_LIMIT_BURST" default:"50"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables.
// A .env file is loaded first when present (development convenience).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
