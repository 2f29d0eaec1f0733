package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/dropDatabas3/hellojohn-facebook/internal/security"
)

// Registry manages the configured providers.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	byName    map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Provider)}
}

// Register adds a provider. Names must be unique.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[p.Name()]; ok {
		return fmt.Errorf("provider already registered: %s", p.Name())
	}
	r.byName[p.Name()] = p
	r.providers = append(r.providers, p)
	return nil
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[name]
	return p, ok
}

// Names returns the registered provider names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}

// Authenticate hands t to the first provider that accepts it. A token no
// provider accepts fails with security.ErrUnsupportedToken before any
// provider runs.
func (r *Registry) Authenticate(ctx context.Context, t security.Token) (Provider, error) {
	r.mu.RLock()
	var selected Provider
	for _, p := range r.providers {
		if p.CanAuthenticate(t) {
			selected = p
			break
		}
	}
	r.mu.RUnlock()

	if selected == nil {
		return nil, fmt.Errorf("%w: %T", security.ErrUnsupportedToken, t)
	}
	return selected, selected.Authenticate(ctx, t)
}
