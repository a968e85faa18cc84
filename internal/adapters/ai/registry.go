package ai

import (
	"sync"

	"fable/pkg/errors"
)

// Registry stores all constructed vendor clients.
type Registry struct {
	clients map[ProviderName]Client
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[ProviderName]Client),
	}
}

// Register adds a client to the registry.
func (r *Registry) Register(client Client) error {
	if client == nil {
		return errors.New("client is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := client.Name()
	if _, exists := r.clients[name]; exists {
		return errors.Wrapf(errors.ErrAlreadyExists, "client %s already registered", name)
	}

	r.clients[name] = client
	return nil
}

// Get returns the client for a provider.
func (r *Registry) Get(name ProviderName) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrProviderNotConfigured, "no client for provider %s", name)
	}

	return client, nil
}

// List returns all registered clients.
func (r *Registry) List() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}

	return clients
}
