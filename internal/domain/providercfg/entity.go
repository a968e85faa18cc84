package providercfg

import "time"

// Performance holds the observed latency for a provider+model pairing.
type Performance struct {
	AverageResponseTime time.Duration `json:"averageResponseTime"`
}

// ProviderConfig is one persisted record per enabled vendor+model
// pairing. The core only reads and ranks these; ownership of the
// records belongs to the external store.
type ProviderConfig struct {
	Provider     string      `json:"provider"`
	Model        string      `json:"model"`
	IsActive     bool        `json:"isActive"`
	CostPerToken float64     `json:"costPerToken"`
	Priority     int         `json:"priority"`
	Performance  Performance `json:"performance"`
}

// Key identifies a config record within the store.
func (c ProviderConfig) Key() string {
	return c.Provider + ":" + c.Model
}
