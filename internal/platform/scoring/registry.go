package scoring

import (
	"sync"

	"github.com/rotisserie/eris"
)

// Registry holds the available assessment modules keyed by type tag.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
	order  []string
}

// NewRegistry returns a registry preloaded with models.
func NewRegistry(models ...*Model) *Registry {
	r := &Registry{models: make(map[string]*Model)}
	for _, m := range models {
		if err := r.Register(m); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a model. Type tags must be unique.
func (r *Registry) Register(m *Model) error {
	if m == nil || m.Type == "" {
		return eris.New("model type is required")
	}
	if m.Classifier == nil {
		return eris.Errorf("model %s has no classifier", m.Type)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.models[m.Type]; dup {
		return eris.Errorf("model %s already registered", m.Type)
	}
	r.models[m.Type] = m
	r.order = append(r.order, m.Type)
	return nil
}

// Get looks up a model by type tag.
func (r *Registry) Get(moduleType string) (*Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[moduleType]
	return m, ok
}

// Types lists registered tags in registration order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns models in registration order.
func (r *Registry) All() []*Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Model, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.models[t])
	}
	return out
}
