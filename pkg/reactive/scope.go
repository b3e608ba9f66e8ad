package reactive

import (
	"sync"
	"sync/atomic"
)

// id is the process-wide counter for signal and scope identifiers.
var id atomic.Uint64

// nextID returns the next unique identifier.
func nextID() uint64 {
	return id.Add(1)
}

// Scope is an ownership boundary for reactive resources.
// When a Scope is disposed, all cleanups and child scopes it contains are
// also disposed. This ensures proper cleanup and prevents leaks.
//
// Scopes form a hierarchy: each unit of work creates a Scope that is a child
// of its parent's Scope.
type Scope struct {
	id uint64

	// parent is the parent Scope in the hierarchy.
	// nil for a root Scope.
	parent *Scope

	// children are child Scopes.
	children   []*Scope
	childrenMu sync.Mutex

	// cleanups are functions registered via OnCleanup.
	cleanups   []func()
	cleanupsMu sync.Mutex

	// disposed indicates whether this Scope has been disposed.
	disposed atomic.Bool
}

// NewScope creates a new Scope with the given parent.
// The new Scope is automatically registered as a child of the parent.
// If parent is nil, creates a root Scope.
func NewScope(parent *Scope) *Scope {
	s := &Scope{
		id:     nextID(),
		parent: parent,
	}

	if parent != nil {
		parent.addChild(s)
	}

	return s
}

// ID returns the unique identifier for this Scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Parent returns the parent Scope, or nil if this is a root Scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// IsDisposed returns true if this Scope has been disposed.
func (s *Scope) IsDisposed() bool {
	return s.disposed.Load()
}

// addChild registers a child Scope.
func (s *Scope) addChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()
	s.children = append(s.children, child)
}

// removeChild removes a child Scope from this Scope's children.
func (s *Scope) removeChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()

	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}

// OnCleanup registers a cleanup function to run when this Scope is disposed.
// If the Scope is already disposed, the cleanup runs immediately.
func (s *Scope) OnCleanup(fn func()) {
	if fn == nil {
		return
	}
	if s.disposed.Load() {
		fn()
		return
	}

	s.cleanupsMu.Lock()
	defer s.cleanupsMu.Unlock()
	s.cleanups = append(s.cleanups, fn)
}

// Run executes fn within this scope. If the scope is already disposed,
// fn is not executed and Run returns false.
func (s *Scope) Run(fn func()) bool {
	if s.disposed.Load() {
		return false
	}
	fn()
	return true
}

// Dispose disposes this Scope, all its children, and registered cleanups.
// Children are disposed in reverse order (last created first), then
// cleanups run in reverse registration order. Dispose is idempotent.
func (s *Scope) Dispose() {
	if s.disposed.Swap(true) {
		// Already disposed
		return
	}

	// Remove from parent's children list
	if s.parent != nil {
		s.parent.removeChild(s)
	}

	// Dispose children in reverse order
	s.childrenMu.Lock()
	children := make([]*Scope, len(s.children))
	copy(children, s.children)
	s.children = nil
	s.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	// Run cleanups in reverse order
	s.cleanupsMu.Lock()
	cleanups := s.cleanups
	s.cleanups = nil
	s.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
