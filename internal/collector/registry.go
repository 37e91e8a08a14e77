package collector

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var ErrRegistryFrozen = errors.New("collector registry is frozen")

// Registry is an ordered, append-only list of collector factories.
// It is frozen by the first Instantiate call and read-only afterwards.
type Registry struct {
	mu        sync.Mutex
	factories []Factory
	ids       map[string]struct{}
	frozen    bool
}

func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]struct{})}
}

// Register appends factories in order. Ids must be unique and non-empty.
func (r *Registry) Register(factories ...Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRegistryFrozen
	}
	for _, f := range factories {
		if f == nil {
			continue
		}
		id := strings.TrimSpace(f().Metadata().ID)
		if id == "" {
			return fmt.Errorf("collector registered without an id")
		}
		if _, exists := r.ids[id]; exists {
			return fmt.Errorf("duplicate collector id %q", id)
		}
		r.ids[id] = struct{}{}
		r.factories = append(r.factories, f)
	}
	return nil
}

// MustRegister is Register for static startup lists.
func (r *Registry) MustRegister(factories ...Factory) *Registry {
	if err := r.Register(factories...); err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of registered factories.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.factories)
}

// Instantiate freezes the registry and returns one fresh collector per
// factory in registration order, skipping ids in disabled.
func (r *Registry) Instantiate(disabled ...string) []Collector {
	r.mu.Lock()
	r.frozen = true
	factories := append([]Factory(nil), r.factories...)
	r.mu.Unlock()

	skip := make(map[string]struct{}, len(disabled))
	for _, id := range disabled {
		skip[strings.TrimSpace(id)] = struct{}{}
	}

	collectors := make([]Collector, 0, len(factories))
	for _, f := range factories {
		c := f()
		if _, off := skip[c.Metadata().ID]; off {
			continue
		}
		collectors = append(collectors, c)
	}
	return collectors
}
