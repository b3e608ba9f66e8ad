package nav

import "sync"

// ScrollBehavior selects how scroll restoration moves the viewport.
type ScrollBehavior string

const (
	// ScrollAuto jumps instantly.
	ScrollAuto ScrollBehavior = "auto"

	// ScrollSmooth animates.
	ScrollSmooth ScrollBehavior = "smooth"

	// ScrollNone disables scroll restoration entirely.
	ScrollNone ScrollBehavior = "none"
)

// Offset is a viewport scroll position.
type Offset struct {
	X, Y int
}

// Scroller is the engine's view of the host viewport. Browser hosts adapt
// window scrolling; tests use MemoryScroller.
type Scroller interface {
	// Offset reports the current scroll position.
	Offset() Offset

	// ScrollTo moves the viewport to an offset.
	ScrollTo(off Offset, behavior ScrollBehavior)

	// ScrollToHash moves the viewport to a fragment target, reporting
	// whether the target exists.
	ScrollToHash(hash string, behavior ScrollBehavior) bool
}

// MemoryScroller records scroll operations for tests.
type MemoryScroller struct {
	mu sync.Mutex

	// Hashes is the set of fragment targets that exist.
	Hashes map[string]bool

	offset   Offset
	lastHash string
}

// NewMemoryScroller returns a scroller at the top of an empty page.
func NewMemoryScroller() *MemoryScroller {
	return &MemoryScroller{Hashes: make(map[string]bool)}
}

// Offset implements Scroller.
func (s *MemoryScroller) Offset() Offset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// SetOffset positions the viewport directly (simulating user scrolling).
func (s *MemoryScroller) SetOffset(off Offset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset = off
}

// ScrollTo implements Scroller.
func (s *MemoryScroller) ScrollTo(off Offset, _ ScrollBehavior) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset = off
}

// ScrollToHash implements Scroller.
func (s *MemoryScroller) ScrollToHash(hash string, _ ScrollBehavior) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Hashes[hash] {
		return false
	}
	s.lastHash = hash
	return true
}

// LastHash returns the last fragment scrolled to.
func (s *MemoryScroller) LastHash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastHash
}
