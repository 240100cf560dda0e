package combat

import (
	"fmt"
	"sort"
	"sync"
)

// Registry tracks the active encounters of a process, keyed by encounter ID.
// All methods are safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	encounters map[string]*Encounter
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{encounters: make(map[string]*Encounter)}
}

// Add registers enc.
//
// Postcondition: Returns an error if an encounter with the same ID is active.
func (r *Registry) Add(enc *Encounter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.encounters[enc.ID()]; exists {
		return fmt.Errorf("encounter %q already active", enc.ID())
	}
	r.encounters[enc.ID()] = enc
	return nil
}

// Get returns the active encounter with id.
func (r *Registry) Get(id string) (*Encounter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	enc, ok := r.encounters[id]
	return enc, ok
}

// End removes the encounter with id and returns its summary.
//
// Postcondition: Returns false if no such encounter was active.
func (r *Registry) End(id string) (Summary, bool) {
	r.mu.Lock()
	enc, ok := r.encounters[id]
	delete(r.encounters, id)
	r.mu.Unlock()
	if !ok {
		return Summary{}, false
	}
	return enc.Summary(), true
}

// IDs returns the active encounter IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.encounters))
	for id := range r.encounters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of active encounters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.encounters)
}
