package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/wayfind-ui/wayfind/pkg/routepath"
)

// ChunkLoadFunc loads a route's code-split chunk.
type ChunkLoadFunc func(ctx context.Context) error

// ManifestEntry describes one code-split route produced by a build step.
type ManifestEntry struct {
	// Pattern is the route's full path pattern.
	Pattern string `json:"pattern"`

	// ID is an optional stable identity from the build step.
	ID string `json:"id,omitempty"`

	// Tags label the entry for bulk prefetch/invalidation.
	Tags []string `json:"tags,omitempty"`

	// Score orders the entry for score-based prefetching.
	Score int `json:"score,omitempty"`

	// PrimaryTag is the entry's main grouping tag.
	PrimaryTag string `json:"primaryTag,omitempty"`

	// Chunk is the chunk asset path (informational; set by the build step).
	Chunk string `json:"chunk,omitempty"`

	// Load fetches the entry's chunk. Wired by the host, not serialized.
	Load ChunkLoadFunc `json:"-"`
}

// Manifest is a set of manifest entries keyed by normalized pattern.
type Manifest struct {
	entries   []ManifestEntry
	byPattern map[string]*ManifestEntry
}

// NewManifest builds a manifest from entries. Patterns are normalized;
// a duplicate pattern keeps the first entry.
func NewManifest(entries []ManifestEntry) (*Manifest, error) {
	m := &Manifest{
		entries:   make([]ManifestEntry, 0, len(entries)),
		byPattern: make(map[string]*ManifestEntry, len(entries)),
	}

	for _, e := range entries {
		p, err := routepath.Normalize(e.Pattern)
		if err != nil {
			return nil, fmt.Errorf("manifest pattern %q: %w", e.Pattern, err)
		}
		e.Pattern = p
		m.entries = append(m.entries, e)
		if _, dup := m.byPattern[p]; !dup {
			m.byPattern[p] = &m.entries[len(m.entries)-1]
		}
	}
	return m, nil
}

// ForPattern returns the entry for a route's full path pattern.
func (m *Manifest) ForPattern(pattern string) *ManifestEntry {
	if m == nil {
		return nil
	}
	return m.byPattern[pattern]
}

// Entries returns all manifest entries.
func (m *Manifest) Entries() []ManifestEntry {
	if m == nil {
		return nil
	}
	return m.entries
}

// ByTag returns the entries carrying the given tag.
func (m *Manifest) ByTag(tag string) []ManifestEntry {
	if m == nil {
		return nil
	}
	var out []ManifestEntry
	for _, e := range m.entries {
		for _, t := range e.Tags {
			if t == tag {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// ReadManifest decodes a build-step manifest from JSON.
// Load functions are left nil; the host wires chunk loading.
func ReadManifest(r io.Reader) (*Manifest, error) {
	var entries []ManifestEntry
	dec := json.NewDecoder(r)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding route manifest: %w", err)
	}
	return NewManifest(entries)
}

// ReadManifestFile decodes a build-step manifest from a JSON file.
func ReadManifestFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening route manifest: %w", err)
	}
	defer f.Close()
	return ReadManifest(f)
}
