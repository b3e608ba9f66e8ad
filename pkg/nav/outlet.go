package nav

import (
	"sync"

	"github.com/wayfind-ui/wayfind/pkg/router"
)

// Outlet receives composed view stacks from the engine. DOM hosts patch the
// mounted view into the document; how is entirely the outlet's concern.
type Outlet interface {
	// Mount installs a composed view and returns its unmount cleanup.
	// The engine runs the previous view's cleanup before mounting the
	// next one.
	Mount(view router.View) (unmount func())
}

// OutletFunc is a function adapter for Outlet.
type OutletFunc func(view router.View) func()

// Mount implements Outlet.
func (f OutletFunc) Mount(view router.View) func() {
	return f(view)
}

// MemoryOutlet records mounted views for tests and headless hosts.
type MemoryOutlet struct {
	mu      sync.Mutex
	current router.View
	mounts  int
}

// NewMemoryOutlet returns an empty in-memory outlet.
func NewMemoryOutlet() *MemoryOutlet {
	return &MemoryOutlet{}
}

// Mount implements Outlet.
func (o *MemoryOutlet) Mount(view router.View) func() {
	o.mu.Lock()
	o.current = view
	o.mounts++
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		if o.current == view {
			o.current = nil
		}
		o.mu.Unlock()
	}
}

// Current returns the currently mounted view, or nil.
func (o *MemoryOutlet) Current() router.View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Mounts returns how many views have been mounted.
func (o *MemoryOutlet) Mounts() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mounts
}
