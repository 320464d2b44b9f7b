package services

import (
	"fmt"

	"github.com/bookline/calsync/internal/core/domain"
	"github.com/bookline/calsync/internal/core/ports/driven"
)

// AdapterRegistry resolves the calendar adapter for a provider. Adapters are
// registered once at startup; dispatch is a map lookup, never a string branch
// per call.
type AdapterRegistry struct {
	adapters map[domain.ProviderType]driven.CalendarAdapter
}

// NewAdapterRegistry creates a registry over the given adapters.
func NewAdapterRegistry(adapters ...driven.CalendarAdapter) *AdapterRegistry {
	r := &AdapterRegistry{adapters: make(map[domain.ProviderType]driven.CalendarAdapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Provider()] = a
	}
	return r
}

// Get returns the adapter for the provider.
func (r *AdapterRegistry) Get(provider domain.ProviderType) (driven.CalendarAdapter, error) {
	a, ok := r.adapters[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, provider)
	}
	return a, nil
}
