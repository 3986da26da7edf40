package node

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages the set of nodes available to a host.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]Node
}

// NewRegistry creates an empty node registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]Node)}
}

// Register adds a node. Registering a duplicate name is an error.
func (r *Registry) Register(n Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := n.Name()
	if name == "" {
		return fmt.Errorf("node name must not be empty")
	}
	if _, exists := r.nodes[name]; exists {
		return fmt.Errorf("node %q is already registered", name)
	}
	r.nodes[name] = n
	return nil
}

// Get retrieves a node by name.
func (r *Registry) Get(name string) (Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.nodes[name]
	if !ok {
		return nil, fmt.Errorf("node %q is not registered", name)
	}
	return n, nil
}

// Names returns the registered node names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.nodes))
	for name := range r.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
