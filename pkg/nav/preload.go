package nav

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wayfind-ui/wayfind/pkg/cache"
	"github.com/wayfind-ui/wayfind/pkg/reactive"
	"github.com/wayfind-ui/wayfind/pkg/routepath"
	"github.com/wayfind-ui/wayfind/pkg/router"
)

// EntryStatus is the lifecycle state of a preload entry.
type EntryStatus uint8

const (
	// StatusPending means the entry's loader has not settled.
	StatusPending EntryStatus = iota

	// StatusFulfilled means the loader produced data.
	StatusFulfilled

	// StatusRejected means the loader failed or was cancelled.
	StatusRejected
)

// String returns the status name.
func (s EntryStatus) String() string {
	switch s {
	case StatusFulfilled:
		return "fulfilled"
	case StatusRejected:
		return "rejected"
	default:
		return "pending"
	}
}

// preloadEntry is one warm-up result: an in-flight or settled loader call
// plus the resources (cancellation, scope) released on eviction.
type preloadEntry struct {
	key     string
	routeID string
	done    chan struct{}
	cancel  context.CancelFunc
	scope   *reactive.Scope

	mu     sync.Mutex
	status EntryStatus
	data   any
	err    error
}

// settle records the loader result exactly once.
func (e *preloadEntry) settle(data any, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusPending {
		return
	}
	if err != nil {
		e.status = StatusRejected
		e.err = err
	} else {
		e.status = StatusFulfilled
		e.data = data
	}
	close(e.done)
}

// snapshot reads the entry state atomically.
func (e *preloadEntry) snapshot() (EntryStatus, any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status, e.data, e.err
}

// await blocks until the entry settles or ctx is done.
func (e *preloadEntry) await(ctx context.Context) (any, error) {
	select {
	case <-e.done:
		_, data, err := e.snapshot()
		return data, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Metadata is the route/location metadata attached to a preload entry for
// tag- and predicate-based invalidation.
type Metadata struct {
	// Pattern is the entry's route pattern.
	Pattern string

	// Path is the concrete matched path.
	Path string

	// Tags are the entry's invalidation/prefetch labels.
	Tags []string

	// Score is the entry's prefetch score.
	Score int

	// Params are the entry's matched parameters.
	Params router.Params
}

// clone copies the metadata so callers cannot mutate the cache's indexes
// through a returned view.
func (md Metadata) clone() Metadata {
	out := md
	out.Tags = append([]string(nil), md.Tags...)
	if md.Params != nil {
		params := make(router.Params, len(md.Params))
		for k, v := range md.Params {
			params[k] = v
		}
		out.Params = params
	}
	return out
}

// EntryView is the read-only projection handed to InvalidateWhere
// predicates.
type EntryView struct {
	// Key is the entry's composite cache key.
	Key string

	// RouteID is the stable compiled-route identity.
	RouteID string

	// Status is the entry's settlement state.
	Status EntryStatus

	// Metadata is the entry's attached metadata.
	Metadata Metadata
}

// PreloadCache warms route data ahead of navigation and bounds it with an
// LRU. Evicting an entry, by capacity pressure, explicit invalidation, or
// Clear, aborts its loader, disposes its scope, and purges its tag and
// metadata registrations, strictly in that order, before the evicting
// operation returns.
type PreloadCache struct {
	tree     *router.Tree
	manifest *router.Manifest
	basePath string
	log      *slog.Logger

	mu    sync.Mutex
	lru   *cache.LRU[string, *preloadEntry]
	meta  map[string]Metadata
	byTag map[string]map[string]struct{}
}

// NewPreloadCache creates a preload cache over a compiled tree.
func NewPreloadCache(tree *router.Tree, manifest *router.Manifest, size int, basePath string, log *slog.Logger) *PreloadCache {
	if size < 1 {
		size = defaultPreloadCacheSize
	}
	if log == nil {
		log = slog.Default()
	}
	c := &PreloadCache{
		tree:     tree,
		manifest: manifest,
		basePath: basePath,
		log:      log,
		meta:     make(map[string]Metadata),
		byTag:    make(map[string]map[string]struct{}),
	}
	c.lru = cache.NewLRU[string, *preloadEntry](size, c.release)
	return c
}

// release runs for every evicted entry: abort, dispose, then purge the side
// tables. Always invoked from an operation that already holds c.mu.
func (c *PreloadCache) release(key string, e *preloadEntry) {
	e.cancel()
	e.scope.Dispose()
	c.purgeLocked(key)
}

// purgeLocked removes an entry's tag and metadata registrations.
func (c *PreloadCache) purgeLocked(key string) {
	md, ok := c.meta[key]
	if !ok {
		return
	}
	for _, tag := range md.Tags {
		if keys := c.byTag[tag]; keys != nil {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.byTag, tag)
			}
		}
	}
	delete(c.meta, key)
}

// entryKey builds the composite key: stable route identity plus matched path
// plus canonicalized query.
func entryKey(routeID string, loc routepath.Location) string {
	return routeID + "|" + loc.Key()
}

// PreloadPath warms every loader in the exact match stack for target.
// Partial and failed matches preload nothing. Validation failures skip the
// route with a warning; loader failures settle the entry as rejected without
// failing the call. PreloadPath returns once every created or reused entry
// has settled or ctx is done.
func (c *PreloadCache) PreloadPath(ctx context.Context, target string) error {
	loc, err := routepath.Parse(target, c.basePath)
	if err != nil {
		return err
	}

	m := c.tree.Resolve(loc.Pathname)
	if m.Kind != router.ExactMatch {
		return nil
	}

	if c.manifest != nil {
		leaf := m.Leaf()
		if me := c.manifest.ForPattern(leaf.Compiled.FullPath); me != nil && me.Load != nil {
			if err := me.Load(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					c.log.Warn("preload chunk load failed",
						"pattern", leaf.Compiled.FullPath, "error", err)
				}
				return nil
			}
		}
	}

	query, _ := url.ParseQuery(loc.Query)

	g, gctx := errgroup.WithContext(ctx)
	for _, rm := range m.Stack {
		loader := rm.Route.Preload
		if loader == nil {
			loader = rm.Route.Loader
		}
		if loader == nil {
			continue
		}

		if rm.Route.Schema != nil {
			if err := rm.Route.Schema.Validate(rm.Params, query); err != nil {
				c.log.Warn("preload validation failed",
					"pattern", rm.Compiled.FullPath, "error", err)
				continue
			}
		}

		entry := c.acquire(rm, loc, loader)
		g.Go(func() error {
			select {
			case <-entry.done:
			case <-gctx.Done():
			}
			return nil
		})
	}
	return g.Wait()
}

// acquire reuses a live entry for the route+location or creates one and
// starts its loader. Rejected entries are replaced.
func (c *PreloadCache) acquire(rm router.RouteMatch, loc routepath.Location, loader router.LoaderFunc) *preloadEntry {
	key := entryKey(rm.Compiled.ID, loc)

	c.mu.Lock()
	if e, ok := c.lru.Get(key); ok {
		if st, _, _ := e.snapshot(); st != StatusRejected {
			c.mu.Unlock()
			return e
		}
	}

	lctx, cancel := context.WithCancel(context.Background())
	e := &preloadEntry{
		key:     key,
		routeID: rm.Compiled.ID,
		done:    make(chan struct{}),
		cancel:  cancel,
		scope:   reactive.NewScope(nil),
	}
	// Set may evict (or replace) first; metadata is registered after so
	// the evicted entry's purge cannot take the new registration with it.
	c.lru.Set(key, e)
	c.meta[key] = Metadata{
		Pattern: rm.Compiled.FullPath,
		Path:    rm.Path,
		Tags:    append([]string(nil), rm.Route.Tags...),
		Score:   rm.Route.Score,
		Params:  rm.Params,
	}
	for _, tag := range rm.Route.Tags {
		if c.byTag[tag] == nil {
			c.byTag[tag] = make(map[string]struct{})
		}
		c.byTag[tag][key] = struct{}{}
	}
	c.mu.Unlock()

	go func() {
		data, err := loader(lctx, router.LoadContext{
			Location: loc,
			Params:   rm.Params,
			Route:    rm.Route,
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			c.log.Warn("preload failed", "pattern", rm.Compiled.FullPath, "error", err)
		}
		e.settle(data, err)
	}()
	return e
}

// lookup returns the live (pending or fulfilled) entry for a route and
// location, promoting it, or nil.
func (c *PreloadCache) lookup(routeID string, loc routepath.Location) *preloadEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(entryKey(routeID, loc))
	if !ok {
		return nil
	}
	if st, _, _ := e.snapshot(); st == StatusRejected {
		return nil
	}
	return e
}

// SetMetadata replaces the metadata attached to a cached entry, keeping the
// tag index in sync. A key with no cached entry is ignored.
func (c *PreloadCache) SetMetadata(key string, md Metadata) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lru.Contains(key) {
		return
	}
	c.purgeLocked(key)
	c.meta[key] = md
	for _, tag := range md.Tags {
		if c.byTag[tag] == nil {
			c.byTag[tag] = make(map[string]struct{})
		}
		c.byTag[tag][key] = struct{}{}
	}
}

// GetMetadata returns the metadata attached to a cached entry.
func (c *PreloadCache) GetMetadata(key string) (Metadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	md, ok := c.meta[key]
	return md.clone(), ok
}

// InvalidateByTag evicts every entry whose tag set contains tag, returning
// how many were removed. The tag is trimmed; an empty tag removes nothing.
func (c *PreloadCache) InvalidateByTag(tag string) int {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.byTag[tag]))
	for key := range c.byTag[tag] {
		keys = append(keys, key)
	}
	for _, key := range keys {
		c.lru.Delete(key)
	}
	return len(keys)
}

// InvalidateWhere evicts every entry the predicate selects. The sweep is
// fail-closed: all predicates are evaluated before any entry is removed, and
// a predicate error aborts the whole sweep with nothing evicted.
func (c *PreloadCache) InvalidateWhere(pred func(EntryView) (bool, error)) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var selected []string
	for _, key := range c.lru.Keys() {
		e, ok := c.lru.Peek(key)
		if !ok {
			continue
		}
		st, _, _ := e.snapshot()
		view := EntryView{
			Key:      key,
			RouteID:  e.routeID,
			Status:   st,
			Metadata: c.meta[key].clone(),
		}

		match, err := pred(view)
		if err != nil {
			return 0, err
		}
		if match {
			selected = append(selected, key)
		}
	}

	for _, key := range selected {
		c.lru.Delete(key)
	}
	return len(selected), nil
}

// Delete evicts one entry by key.
func (c *PreloadCache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Delete(key)
}

// Clear evicts every entry.
func (c *PreloadCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Clear()
}

// Len returns the number of cached entries.
func (c *PreloadCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
