package nav

import (
	"sync"

	"github.com/wayfind-ui/wayfind/pkg/routepath"
)

// HistoryMode controls how a committed transition touches the history stack.
type HistoryMode uint8

const (
	// HistoryPush pushes a new history entry.
	HistoryPush HistoryMode = iota

	// HistoryReplace replaces the current history entry. Forced for every
	// redirect hop so redirect chains never pollute the back stack.
	HistoryReplace

	// HistoryNone leaves history untouched (popstate-driven transitions,
	// Back()).
	HistoryNone
)

// String returns the mode's name.
func (m HistoryMode) String() string {
	switch m {
	case HistoryReplace:
		return "replace"
	case HistoryNone:
		return "none"
	default:
		return "push"
	}
}

// History is the engine's view of the host history stack. Browser hosts
// adapt the History API; tests use MemoryHistory.
type History interface {
	// Push appends a new entry.
	Push(loc routepath.Location)

	// Replace overwrites the current entry.
	Replace(loc routepath.Location)

	// Back steps to the previous entry, reporting it and whether one
	// existed.
	Back() (routepath.Location, bool)

	// Current reports the current entry, if any.
	Current() (routepath.Location, bool)
}

// MemoryHistory is an in-process History backed by a slice.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []routepath.Location
	pos     int
}

// NewMemoryHistory returns an empty in-memory history stack.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{pos: -1}
}

// Push implements History. Entries forward of the current position are
// discarded, matching browser semantics.
func (h *MemoryHistory) Push(loc routepath.Location) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries[:h.pos+1], loc)
	h.pos = len(h.entries) - 1
}

// Replace implements History.
func (h *MemoryHistory) Replace(loc routepath.Location) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pos < 0 {
		h.entries = append(h.entries, loc)
		h.pos = 0
		return
	}
	h.entries[h.pos] = loc
}

// Back implements History.
func (h *MemoryHistory) Back() (routepath.Location, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pos <= 0 {
		return routepath.Location{}, false
	}
	h.pos--
	return h.entries[h.pos], true
}

// Current implements History.
func (h *MemoryHistory) Current() (routepath.Location, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pos < 0 {
		return routepath.Location{}, false
	}
	return h.entries[h.pos], true
}

// Len returns the number of entries on the stack.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
