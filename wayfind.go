// Package wayfind provides the public API for the wayfind router.
//
// This is the recommended import for most applications:
//
//	import "github.com/wayfind-ui/wayfind"
//
// Usage:
//
//	engine, err := wayfind.New(wayfind.Config{
//	    Routes: []*wayfind.Route{
//	        {Path: "/", Layout: appLayout, Children: []*wayfind.Route{
//	            {Path: "users/:id", View: userView, Loader: userLoader},
//	        }},
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := engine.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	engine.Navigate(ctx, "/users/7")
package wayfind

import (
	"github.com/wayfind-ui/wayfind/pkg/nav"
	"github.com/wayfind-ui/wayfind/pkg/routepath"
	"github.com/wayfind-ui/wayfind/pkg/router"
)

// =============================================================================
// Route authoring (pkg/router re-exported)
// =============================================================================

// Route is one authored route definition.
type Route = router.Route

// View is whatever a ViewFunc renders; the host interprets it.
type View = router.View

// Params maps parameter names to captured values.
type Params = router.Params

// Decision is a guard or middleware verdict.
type Decision = router.Decision

// Core route callbacks.
type (
	ViewFunc     = router.ViewFunc
	LayoutFunc   = router.LayoutFunc
	GuardFunc    = router.GuardFunc
	LoaderFunc   = router.LoaderFunc
	RedirectFunc = router.RedirectFunc
	Middleware   = router.Middleware
	Schema       = router.Schema
)

// Callback contexts.
type (
	RenderContext = router.RenderContext
	GuardContext  = router.GuardContext
	LoadContext   = router.LoadContext
)

// Manifest types for code-split chunk metadata.
type (
	Manifest      = router.Manifest
	ManifestEntry = router.ManifestEntry
)

// Allow lets the transition proceed.
func Allow() Decision { return router.Allow() }

// Block vetoes the transition.
func Block() Decision { return router.Block() }

// Redirect hands the transition off to target.
func Redirect(target string) Decision { return router.Redirect(target) }

// RedirectTo returns a RedirectFunc that always redirects to target.
func RedirectTo(target string) RedirectFunc { return router.RedirectTo(target) }

// Compile builds the priority-ordered match tree from authored routes.
func Compile(routes []*Route) (*router.Tree, error) { return router.Compile(routes) }

// ReadManifestFile loads a route manifest from a JSON file.
func ReadManifestFile(path string) (*Manifest, error) { return router.ReadManifestFile(path) }

// =============================================================================
// Navigation (pkg/nav re-exported)
// =============================================================================

// Engine drives navigation over a compiled route tree.
type Engine = nav.Engine

// Config configures an Engine.
type Config = nav.Config

// Location is a parsed navigation target.
type Location = routepath.Location

// Host integration surfaces.
type (
	History  = nav.History
	Outlet   = nav.Outlet
	Scroller = nav.Scroller
	Hooks    = nav.Hooks
)

// Navigation options.
type NavigateOption = nav.NavigateOption

// Observability.
type (
	TransitionObserver = nav.TransitionObserver
	Outcome            = nav.Outcome
)

// Sentinel errors returned by Engine operations.
var (
	ErrBlocked          = nav.ErrBlocked
	ErrNotFound         = nav.ErrNotFound
	ErrSuperseded       = nav.ErrSuperseded
	ErrStopped          = nav.ErrStopped
	ErrTooManyRedirects = nav.ErrTooManyRedirects
)

// New creates a navigation engine from the configuration.
func New(cfg Config) (*Engine, error) { return nav.NewEngine(cfg) }

// WithReplace makes a navigation replace the current history entry.
func WithReplace() NavigateOption { return nav.WithReplace() }

// WithoutScroll suppresses scroll restoration for one navigation.
func WithoutScroll() NavigateOption { return nav.WithoutScroll() }
