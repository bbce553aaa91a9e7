package detail

import "sync"

// Expansion tracks which history items are expanded in a detail view. Pure
// view state: mutating it never triggers a re-fetch.
type Expansion struct {
	mu  sync.Mutex
	set map[string]struct{}
}

func NewExpansion() *Expansion {
	return &Expansion{set: make(map[string]struct{})}
}

// Toggle flips one item between expanded and collapsed.
func (e *Expansion) Toggle(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.set[id]; ok {
		delete(e.set, id)
		return
	}
	e.set[id] = struct{}{}
}

// ExpandAll marks every given id expanded, replacing the current set.
func (e *Expansion) ExpandAll(ids []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.set = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		e.set[id] = struct{}{}
	}
}

// CollapseAll clears the set.
func (e *Expansion) CollapseAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.set = make(map[string]struct{})
}

// Expanded reports whether id is currently expanded.
func (e *Expansion) Expanded(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.set[id]
	return ok
}

// Count returns how many items are expanded.
func (e *Expansion) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.set)
}
