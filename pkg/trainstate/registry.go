package trainstate

import (
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Registry is the append-only set of product labels observed during
// reconciliation. It drives the map's filter control; consumers only
// re-render the control when Register reports a genuinely new label.
type Registry struct {
	mu     sync.RWMutex
	labels map[string]bool
}

func NewRegistry() *Registry {
	return &Registry{
		labels: map[string]bool{},
	}
}

// Register inserts a product label and reports whether it was newly added.
// Empty labels are ignored.
func (r *Registry) Register(label string) bool {
	if label == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.labels[label] {
		return false
	}

	r.labels[label] = true
	return true
}

// Sorted returns the de-duplicated labels in sorted order.
func (r *Registry) Sorted() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	labels := maps.Keys(r.labels)
	slices.Sort(labels)

	return labels
}
