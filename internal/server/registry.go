package server

import (
	"sync"

	"github.com/kunal-geeks/pieceserve/internal/merkle"
)

// Registry holds the trees this server can answer for, keyed by hex
// root hash. It is insert-only: trees are registered at startup and
// never removed or replaced, so lookups are read-mostly and the trees
// themselves need no locking once published.
type Registry struct {
	mu    sync.RWMutex
	trees map[string]*merkle.Tree
	order []string // insertion order; order[0] backs the summary endpoint
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		trees: make(map[string]*merkle.Tree),
	}
}

// Add registers a tree under its root hash and returns the hex key.
// Registering a tree whose root is already present is a no-op: the
// root is content-derived, so an equal key means an equal tree.
func (r *Registry) Add(t *merkle.Tree) string {
	key := t.RootHash().String()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.trees[key]; !exists {
		r.trees[key] = t
		r.order = append(r.order, key)
	}
	return key
}

// Get returns the tree registered under the given hex root hash.
func (r *Registry) Get(rootHex string) (*merkle.Tree, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.trees[rootHex]
	return t, ok
}

// First returns the earliest-registered tree. The summary endpoint
// reports this one.
func (r *Registry) First() (*merkle.Tree, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return nil, false
	}
	return r.trees[r.order[0]], true
}

// Len returns the number of registered trees.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.trees)
}
