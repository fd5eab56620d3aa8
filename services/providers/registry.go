package providers

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrProviderNotFound is returned when a provider is not registered
	ErrProviderNotFound = errors.New("provider not found")

	// ErrProviderAlreadyRegistered is returned when trying to register a duplicate provider
	ErrProviderAlreadyRegistered = errors.New("provider already registered")
)

// Registry manages embedder and generator instances by provider name
type Registry struct {
	mu         sync.RWMutex
	embedders  map[string]Embedder
	generators map[string]Generator
}

// NewRegistry creates a new provider registry
func NewRegistry() *Registry {
	return &Registry{
		embedders:  make(map[string]Embedder),
		generators: make(map[string]Generator),
	}
}

// RegisterEmbedder registers an embedder under its name
func (r *Registry) RegisterEmbedder(e Embedder) error {
	if e == nil || e.Name() == "" {
		return errors.New("embedder must be non-nil and named")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.embedders[e.Name()]; exists {
		return fmt.Errorf("embedder %s: %w", e.Name(), ErrProviderAlreadyRegistered)
	}
	r.embedders[e.Name()] = e
	return nil
}

// RegisterGenerator registers a generator under its name
func (r *Registry) RegisterGenerator(g Generator) error {
	if g == nil || g.Name() == "" {
		return errors.New("generator must be non-nil and named")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.generators[g.Name()]; exists {
		return fmt.Errorf("generator %s: %w", g.Name(), ErrProviderAlreadyRegistered)
	}
	r.generators[g.Name()] = g
	return nil
}

// Embedder retrieves an embedder by provider name
func (r *Registry) Embedder(name string) (Embedder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.embedders[name]
	if !ok {
		return nil, fmt.Errorf("embedder %s: %w", name, ErrProviderNotFound)
	}
	return e, nil
}

// Generator retrieves a generator by provider name
func (r *Registry) Generator(name string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("generator %s: %w", name, ErrProviderNotFound)
	}
	return g, nil
}

// ListProviders returns the sorted names of all registered providers
func (r *Registry) ListProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for name := range r.embedders {
		seen[name] = struct{}{}
	}
	for name := range r.generators {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
