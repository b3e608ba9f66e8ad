package router

import (
	"context"
	"net/url"
	"strings"

	"github.com/wayfind-ui/wayfind/pkg/routepath"
)

// View is an opaque renderable value produced by view hooks. The navigation
// engine composes views into stacks; mounting them is the outlet's concern.
type View any

// RenderContext carries the data a view or layout hook renders from.
type RenderContext struct {
	// Location is the navigation target being rendered.
	Location routepath.Location

	// Params are the route parameters of the deepest matched route.
	Params Params

	// Err is set when rendering an error boundary.
	Err error
}

// ViewFunc produces a view for a matched route.
type ViewFunc func(rc RenderContext) View

// LayoutFunc wraps child content in a layout.
type LayoutFunc func(rc RenderContext, child View) View

// GuardFunc decides whether a navigation may proceed.
type GuardFunc func(ctx context.Context, gc GuardContext) (Decision, error)

// Middleware processes a navigation before guards and loaders run.
// Middleware executes strictly sequentially, root to leaf, and can block or
// redirect the transition exactly like a guard.
type Middleware interface {
	Handle(ctx context.Context, gc GuardContext) (Decision, error)
}

// MiddlewareFunc is a function adapter for Middleware.
type MiddlewareFunc func(ctx context.Context, gc GuardContext) (Decision, error)

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ctx context.Context, gc GuardContext) (Decision, error) {
	return f(ctx, gc)
}

// GuardContext carries the navigation state visible to middleware and guards.
type GuardContext struct {
	// To is the target location of the transition.
	To routepath.Location

	// From is the location being navigated away from.
	From routepath.Location

	// Route is the matched route the guard is declared on.
	// Nil for global middleware.
	Route *Route

	// Params are the parameters of the deepest route in the match stack.
	Params Params
}

// LoaderFunc fetches data for a route. The context is cancelled when the
// owning transition or preload entry is superseded or evicted.
type LoaderFunc func(ctx context.Context, lc LoadContext) (any, error)

// LoadContext carries the data a loader fetches from.
type LoadContext struct {
	// Location is the navigation target.
	Location routepath.Location

	// Params are the parameters of the route the loader is declared on.
	Params Params

	// Route is the route the loader is declared on.
	Route *Route
}

// RedirectFunc resolves a redirect target for a route. Returning an empty
// string means no redirect.
type RedirectFunc func(ctx context.Context, gc GuardContext) (string, error)

// RedirectTo returns a RedirectFunc that always redirects to target.
func RedirectTo(target string) RedirectFunc {
	return func(context.Context, GuardContext) (string, error) {
		return target, nil
	}
}

// Schema validates a route's parameters and query before loaders run.
type Schema interface {
	Validate(params Params, query url.Values) error
}

// SchemaFunc is a function adapter for Schema.
type SchemaFunc func(params Params, query url.Values) error

// Validate implements Schema.
func (f SchemaFunc) Validate(params Params, query url.Values) error {
	return f(params, query)
}

// Route is an authored route definition. Routes form a nested tree supplied
// at router creation; the tree is compiled once and is immutable afterwards.
type Route struct {
	// Path is the route's path segment pattern, joined against the parent.
	// Segments: literals, ":name" dynamic, ":name*" catch-all,
	// ":name*?" optional catch-all, "*" anonymous catch-all.
	Path string

	// View renders the route's content. A route with a View (or Redirect)
	// is renderable: matching it terminates a lookup exactly.
	View ViewFunc

	// Layout wraps descendant content. A route with only a Layout still
	// participates in prefix matching.
	Layout LayoutFunc

	// Guard runs after middleware for this route, root to leaf.
	Guard GuardFunc

	// Middleware runs before the guard for this route.
	Middleware Middleware

	// Loader fetches the route's data during navigation.
	Loader LoaderFunc

	// Preload warms the route's data ahead of navigation. When nil, the
	// Loader is used for preloading as well.
	Preload LoaderFunc

	// Redirect short-circuits an exact match into a new transition.
	Redirect RedirectFunc

	// Error renders this route's error boundary.
	Error ViewFunc

	// NotFound renders this route's not-found boundary for partial matches
	// below it.
	NotFound ViewFunc

	// Pending renders this route's pending boundary while loaders run.
	Pending ViewFunc

	// Schema validates params/query before any loader in the stack runs.
	Schema Schema

	// Tags label the route for tag-policy guards/layouts, bulk cache
	// invalidation, and prefetch selection.
	Tags []string

	// Score orders the route for score-based prefetching.
	Score int

	// Children are nested routes.
	Children []*Route
}

// Renderable reports whether the route can terminate an exact match.
func (r *Route) Renderable() bool {
	return r.View != nil || r.Redirect != nil
}

// HasTag reports whether the route carries the given tag.
func (r *Route) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ParamValue is a single route parameter: either a simple string capture or
// an ordered list captured by a catch-all.
type ParamValue struct {
	// Value is the decoded capture for simple dynamic segments.
	Value string

	// List is the decoded segment list for catch-all captures.
	List []string

	// CatchAll distinguishes an empty List from a simple empty Value.
	CatchAll bool
}

// String renders the parameter as a path fragment.
func (v ParamValue) String() string {
	if v.CatchAll {
		return strings.Join(v.List, "/")
	}
	return v.Value
}

// Params maps parameter names to captured values.
type Params map[string]ParamValue

// Get returns the string form of a parameter, or "" if absent.
func (p Params) Get(name string) string {
	return p[name].String()
}

// List returns the list form of a catch-all parameter.
func (p Params) List(name string) []string {
	v, ok := p[name]
	if !ok {
		return nil
	}
	if v.CatchAll {
		return v.List
	}
	return []string{v.Value}
}

// clone returns a copy of the params map.
func (p Params) clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
