package providercfg

import "context"

// Repository defines read/write access to provider configuration
// records. Ranking logic lives in the cost optimizer; this interface
// only returns snapshots.
type Repository interface {
	// ListActive returns all records with IsActive set.
	ListActive(ctx context.Context) ([]ProviderConfig, error)

	// Save upserts a config record.
	Save(ctx context.Context, cfg ProviderConfig) error
}
