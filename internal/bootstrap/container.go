package bootstrap

import (
	"context"

	"fable/internal/adapters/ai"
	chclient "fable/internal/adapters/clickhouse"
	"fable/internal/adapters/config"
	"fable/internal/adapters/contentfilter"
	"fable/internal/adapters/errors/noop"
	"fable/internal/adapters/errors/sentry"
	redisclient "fable/internal/adapters/redis"
	"fable/internal/adapters/retry"
	"fable/internal/domain/ai_usage"
	"fable/internal/domain/providercfg"
	"fable/internal/metrics"
	chrepo "fable/internal/repository/clickhouse"
	redisrepo "fable/internal/repository/redis"
	aiusagesvc "fable/internal/services/ai_usage"
	"fable/internal/services/costoptimizer"
	storysvc "fable/internal/services/story"
	"fable/pkg/errors"
	"fable/pkg/logger"
)

// Container wires every component in initialization order. Embedding
// applications build one container at startup and hand out the
// services.
type Container struct {
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Data stores
	CH    *chclient.Client
	Redis *redisclient.Client

	// Repositories
	ProviderConfigs providercfg.Repository
	DailyCosts      ai_usage.MetricsRepository
	AIUsage         *chrepo.AIUsageRepository

	// Services
	Registry      *ai.Registry
	Story         *storysvc.Service
	CostOptimizer *costoptimizer.Service
	Usage         *aiusagesvc.Service
}

// Build constructs the full dependency graph from environment config.
func Build(ctx context.Context) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		return nil, errors.Wrap(err, "failed to init logger")
	}
	log := logger.Get()

	var tracker errors.Tracker
	if cfg.ErrorTracking.Enabled && cfg.ErrorTracking.SentryDSN != "" {
		tracker, err = sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
		if err != nil {
			return nil, errors.Wrap(err, "failed to init sentry")
		}
	} else {
		tracker = noop.New()
	}
	logger.SetErrorTracker(tracker)

	rdb, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to redis")
	}

	ch, err := chclient.NewClient(cfg.ClickHouse)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to clickhouse")
	}

	metrics.Init()
	metrics.RegisterCustomCollector(metrics.NewCustomCollector(log, ch.Conn(), rdb.Client()))

	providerConfigs := redisrepo.NewProviderConfigRepository(rdb.Client())
	dailyCosts := redisrepo.NewDailyCostRepository(rdb.Client())
	usageRepo := chrepo.NewAIUsageRepository(ch.Conn())

	usage := aiusagesvc.NewService(usageRepo, dailyCosts, log.With("service", "ai_usage"))
	usage.Start(ctx)

	registry, err := ai.BuildRegistry(cfg.AI)
	if err != nil {
		return nil, err
	}

	story := storysvc.NewService(
		registry,
		contentfilter.New(),
		retry.New(retry.DefaultConfig()),
		usage,
		storysvc.RoutingFromConfig(cfg.AI),
		log.With("service", "story"),
	)

	optimizer := costoptimizer.NewService(story, providerConfigs, dailyCosts, log.With("service", "costoptimizer"))

	return &Container{
		Config:          cfg,
		Log:             log,
		ErrorTracker:    tracker,
		CH:              ch,
		Redis:           rdb,
		ProviderConfigs: providerConfigs,
		DailyCosts:      dailyCosts,
		AIUsage:         usageRepo,
		Registry:        registry,
		Story:           story,
		CostOptimizer:   optimizer,
		Usage:           usage,
	}, nil
}

// Shutdown flushes buffers and closes connections in reverse order.
func (c *Container) Shutdown(ctx context.Context) {
	if err := c.Usage.Stop(ctx); err != nil {
		c.Log.Errorf("usage service shutdown: %v", err)
	}

	if err := c.CH.Close(); err != nil {
		c.Log.Errorf("clickhouse close: %v", err)
	}
	if err := c.Redis.Close(); err != nil {
		c.Log.Errorf("redis close: %v", err)
	}

	if err := c.ErrorTracker.Flush(ctx); err != nil {
		c.Log.Errorf("error tracker flush: %v", err)
	}

	_ = logger.Sync()
}
