package engine

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/darmiel/attrgate/internal/core"
)

// Registry holds the authenticator factories known to the flow host.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]core.AuthenticatorFactory
}

func NewRegistry(factories ...core.AuthenticatorFactory) *Registry {
	r := &Registry{factories: make(map[string]core.AuthenticatorFactory)}
	for _, f := range factories {
		r.Register(f)
	}
	return r
}

var defaultRegistry = NewRegistry(NewRequireAttributeFactory())

// DefaultRegistry returns the registry with all built-in authenticators.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func (r *Registry) Register(f core.AuthenticatorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[f.ID()] = f
}

func (r *Registry) Get(id string) (core.AuthenticatorFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[id]
	return f, ok
}

// List returns all factories sorted by ID.
func (r *Registry) List() []core.AuthenticatorFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]core.AuthenticatorFactory, 0, len(r.factories))
	for _, f := range r.factories {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID() < out[j].ID()
	})
	return out
}

// CheckRequirement returns an error if the factory does not support the requirement.
func (r *Registry) CheckRequirement(id string, requirement core.Requirement) error {
	f, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("unknown authenticator '%s'", id)
	}
	if !slices.Contains(f.RequirementChoices(), requirement) {
		return fmt.Errorf("authenticator '%s' does not support requirement %s (supported: %v)",
			id, requirement, f.RequirementChoices())
	}
	return nil
}
