package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"fable/internal/domain/providercfg"
	"fable/internal/metrics"
	"fable/pkg/errors"
)

const (
	providerConfigKeyPrefix = "provider_config:"
	providerConfigIndexKey  = "provider_config:index"
)

// ProviderConfigRepository implements providercfg.Repository using
// Redis JSON documents, one per vendor+model pairing, with a set index
// for listing.
type ProviderConfigRepository struct {
	client *redis.Client
}

// NewProviderConfigRepository creates a new provider config repository
func NewProviderConfigRepository(client *redis.Client) *ProviderConfigRepository {
	return &ProviderConfigRepository{client: client}
}

// Save upserts a config record and indexes its key.
func (r *ProviderConfigRepository) Save(ctx context.Context, cfg providercfg.ProviderConfig) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("redis", "provider_config_save", time.Since(start), err) }()

	data, err := json.Marshal(cfg)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal provider config %s", cfg.Key())
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, providerConfigKeyPrefix+cfg.Key(), data, 0)
	pipe.SAdd(ctx, providerConfigIndexKey, cfg.Key())
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "failed to save provider config %s", cfg.Key())
	}

	return nil
}

// ListActive returns all records with IsActive set.
func (r *ProviderConfigRepository) ListActive(ctx context.Context) (configs []providercfg.ProviderConfig, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("redis", "provider_config_list", time.Since(start), err) }()

	keys, err := r.client.SMembers(ctx, providerConfigIndexKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list provider config index")
	}

	configs = make([]providercfg.ProviderConfig, 0, len(keys))
	for _, key := range keys {
		data, err := r.client.Get(ctx, providerConfigKeyPrefix+key).Bytes()
		if err == redis.Nil {
			// Index entry without a document; skip stale keys.
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get provider config %s", key)
		}

		var cfg providercfg.ProviderConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal provider config %s", key)
		}

		if cfg.IsActive {
			configs = append(configs, cfg)
		}
	}

	return configs, nil
}
