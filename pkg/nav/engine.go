package nav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/wayfind-ui/wayfind/pkg/reactive"
	"github.com/wayfind-ui/wayfind/pkg/routepath"
	"github.com/wayfind-ui/wayfind/pkg/router"
)

// maxRedirectHops bounds a redirect chain. Exceeding it is fatal to the
// transition, not to the engine.
const maxRedirectHops = 10

// flightKey identifies a coalescable navigation: same target, same history
// mode. Redirect hops never coalesce.
type flightKey struct {
	url  string
	mode HistoryMode
}

// flight is one in-flight navigation shared by coalesced callers.
type flight struct {
	done chan struct{}
	err  error
}

// Engine is the navigation state machine: idle → loading → {idle, error}.
//
// Every transition owns a strictly increasing token. After every suspension
// point the pipeline re-checks that its token is still current and silently
// abandons when superseded; superseding is the only cancellation primitive.
type Engine struct {
	cfg      Config
	log      *slog.Logger
	tree     *router.Tree
	preload  *PreloadCache
	history  History
	outlet   Outlet
	scroller Scroller
	offsets  *lru.Cache[string, Offset]

	route  *reactive.Signal[*RouteState]
	status *reactive.Signal[Status]

	mu          sync.Mutex
	started     bool
	token       uint64
	scope       *reactive.Scope
	loaderScope *reactive.Scope
	loaderStop  context.CancelFunc
	inflight    map[flightKey]*flight
	unmount     func()
	current     routepath.Location
	hasCurrent  bool
}

// NewEngine compiles the route table and builds an engine. The route table
// is immutable afterwards.
func NewEngine(cfg Config) (*Engine, error) {
	tree, err := router.Compile(cfg.Routes)
	if err != nil {
		return nil, err
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.History == nil {
		cfg.History = NewMemoryHistory()
	}
	if cfg.Outlet == nil {
		cfg.Outlet = NewMemoryOutlet()
	}
	if cfg.ScrollBehavior == "" {
		cfg.ScrollBehavior = ScrollAuto
	}
	if cfg.PreloadCacheSize < 1 {
		cfg.PreloadCacheSize = defaultPreloadCacheSize
	}
	if cfg.ScrollPositionsCacheSize < 1 {
		cfg.ScrollPositionsCacheSize = defaultScrollPositionsSize
	}

	offsets, err := lru.New[string, Offset](cfg.ScrollPositionsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("scroll positions cache: %w", err)
	}

	e := &Engine{
		cfg:      cfg,
		log:      cfg.Logger,
		tree:     tree,
		history:  cfg.History,
		outlet:   cfg.Outlet,
		scroller: cfg.Scroller,
		offsets:  offsets,
		route:    reactive.NewSignal[*RouteState](nil),
		status:   reactive.NewSignal(Status{Phase: PhaseIdle}),
		inflight: make(map[flightKey]*flight),
	}
	e.preload = NewPreloadCache(tree, cfg.Manifest, cfg.PreloadCacheSize, cfg.BasePath, cfg.Logger)
	return e, nil
}

// Tree returns the compiled route tree.
func (e *Engine) Tree() *router.Tree {
	return e.tree
}

// Route returns the committed-route signal.
func (e *Engine) Route() *reactive.Signal[*RouteState] {
	return e.route
}

// Status returns the transition-status signal.
func (e *Engine) Status() *reactive.Signal[Status] {
	return e.status
}

// Start marks the engine running and performs the initial-load transition to
// the history's current entry, or "/" when the history is empty.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return nil
	}
	e.started = true
	e.scope = reactive.NewScope(nil)
	e.mu.Unlock()

	target := "/"
	if loc, ok := e.history.Current(); ok {
		target = loc.FullPath
	}
	err := e.Navigate(ctx, target, WithHistory(HistoryReplace))
	if errors.Is(err, ErrSuperseded) {
		return nil
	}
	return err
}

// Stop supersedes any in-flight transition, aborts the live loader scope,
// clears the preload and scroll caches, and unmounts the current view.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return
	}
	e.started = false
	e.token++
	stop := e.loaderStop
	scope := e.loaderScope
	root := e.scope
	unmount := e.unmount
	e.loaderStop, e.loaderScope, e.scope, e.unmount = nil, nil, nil, nil
	e.hasCurrent = false
	e.mu.Unlock()

	if stop != nil {
		stop()
	}
	if scope != nil {
		scope.Dispose()
	}
	if root != nil {
		root.Dispose()
	}
	e.preload.Clear()
	e.offsets.Purge()
	if unmount != nil {
		e.runCleanup(unmount)
	}
	e.route.Set(nil)
	e.status.Set(Status{Phase: PhaseIdle})
}

// Navigate runs a full transition to target. Concurrent calls with the same
// target and history mode coalesce onto one pipeline execution; every caller
// observes that execution's result.
func (e *Engine) Navigate(ctx context.Context, target string, opts ...NavigateOption) error {
	o := applyNavigateOptions(opts)

	e.mu.Lock()
	if !e.started {
		e.mu.Unlock()
		return ErrStopped
	}
	key := flightKey{url: target, mode: o.mode}
	if f, ok := e.inflight[key]; ok {
		e.mu.Unlock()
		select {
		case <-f.done:
			return f.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f := &flight{done: make(chan struct{})}
	e.inflight[key] = f
	e.token++
	tok := e.token
	e.mu.Unlock()

	err := e.run(ctx, tok, target, o, 0)

	f.err = err
	close(f.done)
	e.mu.Lock()
	delete(e.inflight, key)
	e.mu.Unlock()
	return err
}

// Push navigates with a history push. Equivalent to Navigate with defaults.
func (e *Engine) Push(ctx context.Context, target string, opts ...NavigateOption) error {
	return e.Navigate(ctx, target, opts...)
}

// Replace navigates with a history replace.
func (e *Engine) Replace(ctx context.Context, target string, opts ...NavigateOption) error {
	return e.Navigate(ctx, target, append(opts, WithReplace())...)
}

// Back steps the history stack back one entry and transitions to it without
// touching history again.
func (e *Engine) Back(ctx context.Context) error {
	loc, ok := e.history.Back()
	if !ok {
		return ErrNoHistory
	}
	return e.Navigate(ctx, loc.FullPath, WithHistory(HistoryNone))
}

// HandlePop transitions to a location the host history already moved to
// (popstate). History is left untouched.
func (e *Engine) HandlePop(ctx context.Context, raw string) error {
	return e.Navigate(ctx, raw, WithHistory(HistoryNone))
}

// Href builds a concrete href for a route pattern, including the base path.
func (e *Engine) Href(pattern string, params router.Params, query url.Values, hash string) (string, error) {
	href, err := router.Href(pattern, params, query, hash)
	if err != nil {
		return "", err
	}
	if base := strings.TrimSuffix(e.cfg.BasePath, "/"); base != "" {
		href = base + href
	}
	return href, nil
}

// Preload warms the loaders for a target path ahead of navigation.
func (e *Engine) Preload(ctx context.Context, target string) error {
	return e.preload.PreloadPath(ctx, target)
}

// InvalidateByTag evicts every preload entry carrying tag.
func (e *Engine) InvalidateByTag(tag string) int {
	return e.preload.InvalidateByTag(tag)
}

// InvalidateWhere evicts every preload entry the predicate selects.
func (e *Engine) InvalidateWhere(pred func(EntryView) (bool, error)) (int, error) {
	return e.preload.InvalidateWhere(pred)
}

// CacheLen reports the number of live preload entries.
func (e *Engine) CacheLen() int {
	return e.preload.Len()
}

// PrefetchByTag preloads every static renderable route (and manifest entry)
// carrying tag. Parameterized patterns have no concrete path and are skipped.
func (e *Engine) PrefetchByTag(ctx context.Context, tag string) error {
	return e.prefetch(ctx, func(tags []string, _ int) bool {
		for _, t := range tags {
			if t == tag {
				return true
			}
		}
		return false
	})
}

// PrefetchByScore preloads every static renderable route (and manifest
// entry) whose score is at least min.
func (e *Engine) PrefetchByScore(ctx context.Context, min int) error {
	return e.prefetch(ctx, func(_ []string, score int) bool {
		return score >= min
	})
}

// prefetch fans PreloadPath out over every matching static pattern.
func (e *Engine) prefetch(ctx context.Context, match func(tags []string, score int) bool) error {
	targets := e.prefetchTargets(match)

	g, gctx := errgroup.WithContext(ctx)
	for _, target := range targets {
		target := target
		g.Go(func() error {
			return e.preload.PreloadPath(gctx, target)
		})
	}
	return g.Wait()
}

// prefetchTargets collects the static full paths selected by match, from
// the compiled tree and the manifest.
func (e *Engine) prefetchTargets(match func(tags []string, score int) bool) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(pattern string) {
		if strings.ContainsAny(pattern, ":*") {
			return
		}
		if _, dup := seen[pattern]; dup {
			return
		}
		seen[pattern] = struct{}{}
		out = append(out, pattern)
	}

	e.tree.Walk(func(cr *router.CompiledRoute) bool {
		if cr.Route.Renderable() && match(cr.Route.Tags, cr.Route.Score) {
			add(cr.FullPath)
		}
		return true
	})
	if e.cfg.Manifest != nil {
		for _, me := range e.cfg.Manifest.Entries() {
			tags := me.Tags
			if me.PrimaryTag != "" {
				tags = append(append([]string(nil), me.Tags...), me.PrimaryTag)
			}
			if match(tags, me.Score) {
				add(me.Pattern)
			}
		}
	}
	return out
}

// ==== Transition pipeline ====

// run executes one transition (one redirect hop). A redirect hands off to a
// fresh transition with history forced to replace.
func (e *Engine) run(ctx context.Context, tok uint64, target string, o navigateOptions, hops int) error {
	to, err := routepath.Parse(target, e.cfg.BasePath)
	if err != nil {
		e.notifyError(err)
		return err
	}

	ends := e.observeStart(ctx, to)

	next, err := e.pipeline(ctx, tok, to, o)
	if next == "" {
		e.observeEnd(ends, outcomeOf(err), err)
		return err
	}

	if hops+1 > maxRedirectHops {
		rerr := fmt.Errorf("%w: chain of %d hops ends at %s", ErrTooManyRedirects, hops+1, next)
		e.log.Error("redirect chain exceeded limit",
			"target", next, "hops", hops+1, "limit", maxRedirectHops)
		e.notifyError(rerr)
		e.setStatus(tok, Status{Phase: PhaseIdle})
		e.observeEnd(ends, OutcomeFailed, rerr)
		return rerr
	}
	e.observeEnd(ends, OutcomeRedirected, nil)

	e.mu.Lock()
	if tok != e.token {
		e.mu.Unlock()
		return ErrSuperseded
	}
	e.token++
	ntok := e.token
	e.mu.Unlock()

	return e.run(ctx, ntok, next, navigateOptions{mode: HistoryReplace, scroll: o.scroll}, hops+1)
}

// pipeline runs the transition steps. A non-empty next requests a redirect.
func (e *Engine) pipeline(ctx context.Context, tok uint64, to routepath.Location, o navigateOptions) (next string, err error) {
	from, _ := e.currentLocation()
	m := e.tree.Resolve(to.Pathname)

	if !e.setStatus(tok, Status{Phase: PhaseLoading, To: to}) {
		return "", ErrSuperseded
	}

	// Step 2: beforeNavigate veto.
	if hook := e.cfg.Hooks.BeforeNavigate; hook != nil {
		ok, herr := hook(to, from)
		if herr != nil {
			werr := &HookError{Hook: "beforeNavigate", Err: herr}
			e.log.Error("beforeNavigate failed", "to", to.FullPath, "error", herr)
			e.notifyError(werr)
			e.setStatus(tok, Status{Phase: PhaseIdle})
			return "", werr
		}
		if !e.isCurrent(tok) {
			return "", ErrSuperseded
		}
		if !ok {
			e.setStatus(tok, Status{Phase: PhaseIdle})
			return "", ErrBlocked
		}
	}

	// Step 3: guard phase.
	next, err = e.guardPhase(ctx, tok, to, from, m)
	if err != nil || next != "" {
		return next, err
	}

	// Step 4: commit preamble. Persist scroll, swap the loader scope so at
	// most one transition's loaders are alive.
	if e.scroller != nil {
		if cur, ok := e.currentLocation(); ok {
			e.offsets.Add(cur.Key(), e.scroller.Offset())
		}
	}
	e.mu.Lock()
	if tok != e.token {
		e.mu.Unlock()
		return "", ErrSuperseded
	}
	if e.loaderStop != nil {
		e.loaderStop()
	}
	if e.loaderScope != nil {
		e.loaderScope.Dispose()
	}
	loaderCtx, stop := context.WithCancel(ctx)
	e.loaderStop = stop
	e.loaderScope = reactive.NewScope(e.scope)
	e.mu.Unlock()

	// Step 5: unmatched and partial targets render not-found boundaries.
	switch m.Kind {
	case router.NoMatch:
		e.renderNotFound(tok, to, m)
		e.setStatus(tok, Status{Phase: PhaseIdle})
		return "", ErrNotFound
	case router.PartialMatch:
		e.renderNotFound(tok, to, m)
		e.setStatus(tok, Status{Phase: PhaseIdle})
		return "", ErrNotFound
	}

	// Step 6: route-level redirects, root to leaf; first hit wins.
	params := m.Params()
	for _, rm := range m.Stack {
		if rm.Route.Redirect == nil {
			continue
		}
		target, rerr := rm.Route.Redirect(ctx, router.GuardContext{
			To: to, From: from, Route: rm.Route, Params: params,
		})
		if rerr != nil {
			werr := &HookError{Hook: "redirect", Err: rerr}
			e.fail(tok, to, m, werr)
			return "", werr
		}
		if !e.isCurrent(tok) {
			return "", ErrSuperseded
		}
		if target != "" {
			return target, nil
		}
	}

	// Optimistic pending boundary while loaders run.
	if pv := nearestPending(m, e.cfg.PendingView); pv != nil {
		e.mountView(tok, pv(router.RenderContext{Location: to, Params: params}))
	}

	// Step 7: validate the whole stack, then load concurrently.
	query, _ := url.ParseQuery(to.Query)
	if verr := router.ValidateStack(m.Stack, query); verr != nil {
		e.fail(tok, to, m, verr)
		return "", verr
	}
	if !e.isCurrent(tok) {
		return "", ErrSuperseded
	}

	data, lerr := e.load(loaderCtx, to, m)
	if lerr != nil {
		if errors.Is(lerr, context.Canceled) {
			return "", ErrSuperseded
		}
		e.fail(tok, to, m, lerr)
		return "", lerr
	}
	if !e.isCurrent(tok) {
		return "", ErrSuperseded
	}

	// Step 8: commit.
	return "", e.commit(tok, to, m, data, o)
}

// guardPhase runs global middleware, the exact leaf's chunk load, and the
// per-route middleware → guard → tag-guard chain, strictly sequentially,
// inside one scope and one cancellable context torn down at phase end.
func (e *Engine) guardPhase(ctx context.Context, tok uint64, to, from routepath.Location, m router.Match) (string, error) {
	gctx, cancel := context.WithCancel(ctx)
	defer cancel()
	scope := reactive.NewScope(nil)
	defer scope.Dispose()

	params := m.Params()

	// runStep returns (redirect target, proceed, error).
	runStep := func(name string, route *router.Route, fn func(context.Context, router.GuardContext) (router.Decision, error)) (string, bool, error) {
		d, err := fn(gctx, router.GuardContext{
			To: to, From: from, Route: route, Params: params,
		})
		if err != nil {
			werr := &HookError{Hook: name, Err: err}
			e.fail(tok, to, m, werr)
			return "", false, werr
		}
		if !e.isCurrent(tok) {
			return "", false, ErrSuperseded
		}
		if d.Blocked() {
			e.setStatus(tok, Status{Phase: PhaseIdle})
			return "", false, ErrBlocked
		}
		if t, ok := d.Target(); ok {
			return t, false, nil
		}
		return "", true, nil
	}

	for _, mw := range e.cfg.GlobalMiddleware {
		if mw == nil {
			continue
		}
		next, proceed, err := runStep("middleware", nil, mw.Handle)
		if !proceed {
			return next, err
		}
	}

	// Lazy chunk load for the exact leaf before per-route guards.
	if m.Kind == router.ExactMatch && e.cfg.Manifest != nil {
		leaf := m.Leaf()
		if me := e.cfg.Manifest.ForPattern(leaf.Compiled.FullPath); me != nil && me.Load != nil {
			if cerr := me.Load(gctx); cerr != nil {
				werr := &ChunkError{Pattern: leaf.Compiled.FullPath, Err: cerr}
				e.fail(tok, to, m, werr)
				return "", werr
			}
			if !e.isCurrent(tok) {
				return "", ErrSuperseded
			}
		}
	}

	for _, rm := range m.Stack {
		if mw := rm.Route.Middleware; mw != nil {
			next, proceed, err := runStep("middleware", rm.Route, mw.Handle)
			if !proceed {
				return next, err
			}
		}
		if g := rm.Route.Guard; g != nil {
			next, proceed, err := runStep("guard", rm.Route, g)
			if !proceed {
				return next, err
			}
		}
		for _, tag := range rm.Route.Tags {
			tg := e.cfg.TagPolicies.Guards[tag]
			if tg == nil {
				continue
			}
			next, proceed, err := runStep("tag guard "+tag, rm.Route, tg)
			if !proceed {
				return next, err
			}
		}
	}
	return "", nil
}

// load fetches every matched route's data concurrently, preferring a live
// preload entry over invoking the loader directly.
func (e *Engine) load(ctx context.Context, to routepath.Location, m router.Match) (map[string]any, error) {
	var mu sync.Mutex
	data := make(map[string]any)

	g, gctx := errgroup.WithContext(ctx)
	for _, rm := range m.Stack {
		if rm.Route.Loader == nil {
			continue
		}
		rm := rm
		g.Go(func() error {
			if entry := e.preload.lookup(rm.Compiled.ID, to); entry != nil {
				v, err := entry.await(gctx)
				if err == nil {
					mu.Lock()
					data[rm.Compiled.ID] = v
					mu.Unlock()
					return nil
				}
				if gctx.Err() != nil {
					return gctx.Err()
				}
				// Entry rejected or evicted mid-wait: load directly.
			}

			v, err := rm.Route.Loader(gctx, router.LoadContext{
				Location: to, Params: rm.Params, Route: rm.Route,
			})
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				return &LoaderError{Pattern: rm.Compiled.FullPath, Err: err}
			}
			mu.Lock()
			data[rm.Compiled.ID] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// commit publishes the transition: route signal, history, composed view,
// afterNavigate, scroll restore.
func (e *Engine) commit(tok uint64, to routepath.Location, m router.Match, data map[string]any, o navigateOptions) error {
	rc := router.RenderContext{Location: to, Params: m.Params()}
	view := e.compose(m, rc)

	e.mu.Lock()
	if tok != e.token {
		e.mu.Unlock()
		return ErrSuperseded
	}
	e.current = to
	e.hasCurrent = true
	e.mu.Unlock()

	e.route.Set(&RouteState{Location: to, Match: m, Data: data})
	switch o.mode {
	case HistoryPush:
		e.history.Push(to)
	case HistoryReplace:
		e.history.Replace(to)
	}

	e.mountView(tok, view)

	if hook := e.cfg.Hooks.AfterNavigate; hook != nil {
		e.runHook("afterNavigate", func() { hook(to) })
	}

	if o.scroll && e.scroller != nil && e.cfg.ScrollBehavior != ScrollNone {
		e.restoreScroll(to)
	}

	e.setStatus(tok, Status{Phase: PhaseIdle})
	return nil
}

// compose renders the leaf view and wraps it bottom-up in ancestor layouts,
// falling back to tag-policy layouts for ancestors without one.
func (e *Engine) compose(m router.Match, rc router.RenderContext) router.View {
	leaf := m.Leaf()
	var view router.View
	if leaf.Route.View != nil {
		view = leaf.Route.View(rc)
	}

	for i := len(m.Stack) - 2; i >= 0; i-- {
		rm := m.Stack[i]
		layout := rm.Route.Layout
		if layout == nil {
			for _, tag := range rm.Route.Tags {
				if l := e.cfg.TagPolicies.Layouts[tag]; l != nil {
					layout = l
					break
				}
			}
		}
		if layout != nil {
			view = layout(rc, view)
		}
	}
	return view
}

// restoreScroll scrolls to the hash target, else the saved offset for the
// destination, else the top.
func (e *Engine) restoreScroll(to routepath.Location) {
	behavior := e.cfg.ScrollBehavior
	if to.Hash != "" && e.scroller.ScrollToHash(to.Hash, behavior) {
		return
	}
	if off, ok := e.offsets.Get(to.Key()); ok {
		e.scroller.ScrollTo(off, behavior)
		return
	}
	e.scroller.ScrollTo(Offset{}, behavior)
}

// fail renders the nearest error boundary, notifies onError, and moves the
// status to error. The previously committed route stays committed.
func (e *Engine) fail(tok uint64, to routepath.Location, m router.Match, err error) {
	e.log.Error("navigation failed", "to", to.FullPath, "error", err)

	view := e.cfg.ErrorView
	for i := len(m.Stack) - 1; i >= 0; i-- {
		if m.Stack[i].Route.Error != nil {
			view = m.Stack[i].Route.Error
			break
		}
	}
	if view != nil {
		e.mountView(tok, view(router.RenderContext{
			Location: to, Params: m.Params(), Err: err,
		}))
	}

	e.notifyError(err)
	e.setStatus(tok, Status{Phase: PhaseError, To: to, Err: err})
}

// renderNotFound renders the deepest route-level not-found boundary in the
// stack, else the global one.
func (e *Engine) renderNotFound(tok uint64, to routepath.Location, m router.Match) {
	view := e.cfg.NotFoundView
	for i := len(m.Stack) - 1; i >= 0; i-- {
		if m.Stack[i].Route.NotFound != nil {
			view = m.Stack[i].Route.NotFound
			break
		}
	}
	if view == nil {
		return
	}
	e.mountView(tok, view(router.RenderContext{Location: to, Params: m.Params()}))
}

// nearestPending finds the pending boundary closest to the leaf.
func nearestPending(m router.Match, global router.ViewFunc) router.ViewFunc {
	for i := len(m.Stack) - 1; i >= 0; i-- {
		if m.Stack[i].Route.Pending != nil {
			return m.Stack[i].Route.Pending
		}
	}
	return global
}

// mountView swaps the outlet's view: previous cleanup first, then mount.
// A superseded token mounts nothing.
func (e *Engine) mountView(tok uint64, view router.View) {
	e.mu.Lock()
	if tok != e.token {
		e.mu.Unlock()
		return
	}
	prev := e.unmount
	e.unmount = nil
	e.mu.Unlock()

	if prev != nil {
		e.runCleanup(prev)
	}
	unmount := e.outlet.Mount(view)

	e.mu.Lock()
	if tok == e.token {
		e.unmount = unmount
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	if unmount != nil {
		e.runCleanup(unmount)
	}
}

// runCleanup runs an unmount cleanup, containing panics so a broken cleanup
// cannot take the engine down.
func (e *Engine) runCleanup(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err := &HookError{Hook: "unmount", Err: fmt.Errorf("panic: %v", r)}
			e.log.Error("unmount cleanup panicked", "error", err)
			e.notifyError(err)
		}
	}()
	fn()
}

// runHook runs a void user hook with the same containment as runCleanup.
func (e *Engine) runHook(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err := &HookError{Hook: name, Err: fmt.Errorf("panic: %v", r)}
			e.log.Error("hook panicked", "hook", name, "error", err)
			e.notifyError(err)
		}
	}()
	fn()
}

// notifyError delivers a failure to the onError hook, if configured.
func (e *Engine) notifyError(err error) {
	if hook := e.cfg.Hooks.OnError; hook != nil {
		hook(err)
	}
}

// currentLocation reports the committed location.
func (e *Engine) currentLocation() (routepath.Location, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current, e.hasCurrent
}

// isCurrent reports whether tok still owns the engine.
func (e *Engine) isCurrent(tok uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return tok == e.token
}

// setStatus publishes a status update only if tok is still current.
func (e *Engine) setStatus(tok uint64, s Status) bool {
	if !e.isCurrent(tok) {
		return false
	}
	e.status.Set(s)
	return true
}

// observeStart notifies every observer of a transition start.
func (e *Engine) observeStart(ctx context.Context, to routepath.Location) []TransitionEnd {
	if len(e.cfg.Observers) == 0 {
		return nil
	}
	ends := make([]TransitionEnd, 0, len(e.cfg.Observers))
	for _, obs := range e.cfg.Observers {
		if end := obs.ObserveTransition(ctx, to); end != nil {
			ends = append(ends, end)
		}
	}
	return ends
}

// observeEnd settles a transition observation.
func (e *Engine) observeEnd(ends []TransitionEnd, outcome Outcome, err error) {
	for _, end := range ends {
		end(outcome, err)
	}
}

// outcomeOf classifies a pipeline error for observers.
func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeCommitted
	case errors.Is(err, ErrSuperseded):
		return OutcomeSuperseded
	case errors.Is(err, ErrBlocked):
		return OutcomeBlocked
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	default:
		return OutcomeFailed
	}
}
