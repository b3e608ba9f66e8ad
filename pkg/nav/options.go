package nav

import (
	"log/slog"

	"github.com/wayfind-ui/wayfind/pkg/routepath"
	"github.com/wayfind-ui/wayfind/pkg/router"
)

const (
	defaultPreloadCacheSize    = 32
	defaultScrollPositionsSize = 64
)

// Hooks are the application-level lifecycle callbacks.
type Hooks struct {
	// BeforeNavigate runs before the guard phase. Returning false vetoes
	// the transition; an error additionally notifies OnError.
	BeforeNavigate func(to, from routepath.Location) (bool, error)

	// AfterNavigate runs after a successful commit.
	AfterNavigate func(to routepath.Location)

	// OnError is notified of every transition failure.
	OnError func(err error)
}

// TagPolicies attach guards and layouts to every route carrying a tag,
// without touching the route table.
type TagPolicies struct {
	// Guards run after a tagged route's own guard, in tag order.
	Guards map[string]router.GuardFunc

	// Layouts wrap a tagged route's content when it declares no Layout.
	Layouts map[string]router.LayoutFunc
}

// Config configures an Engine.
type Config struct {
	// Routes is the authored route table.
	Routes []*router.Route

	// Manifest optionally maps patterns to code-split chunks.
	Manifest *router.Manifest

	// GlobalMiddleware runs before every transition's per-route chain.
	GlobalMiddleware []router.Middleware

	// Outlet receives composed view stacks. Defaults to a MemoryOutlet.
	Outlet Outlet

	// History is the host history stack. Defaults to a MemoryHistory.
	History History

	// Scroller is the host viewport. Nil disables scroll handling.
	Scroller Scroller

	// BasePath is stripped from every parsed target.
	BasePath string

	// ScrollBehavior selects restoration behavior. Defaults to ScrollAuto.
	ScrollBehavior ScrollBehavior

	// PreloadCacheSize bounds the preload cache. Defaults to 32.
	PreloadCacheSize int

	// ScrollPositionsCacheSize bounds the saved-offset cache.
	// Defaults to 64.
	ScrollPositionsCacheSize int

	// Hooks are the application lifecycle callbacks.
	Hooks Hooks

	// TagPolicies attach guards/layouts by tag.
	TagPolicies TagPolicies

	// NotFoundView renders when no route-level boundary applies.
	NotFoundView router.ViewFunc

	// ErrorView renders when no route-level error boundary applies.
	ErrorView router.ViewFunc

	// PendingView renders while loaders run, when no route-level pending
	// boundary applies.
	PendingView router.ViewFunc

	// Logger receives engine diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Observers watch transitions for metrics and tracing.
	Observers []TransitionObserver
}

// navigateOptions is the applied option set for one Navigate call.
type navigateOptions struct {
	mode   HistoryMode
	scroll bool
}

// NavigateOption customizes a single Navigate call.
type NavigateOption func(*navigateOptions)

// WithReplace commits the transition with a history replace instead of a
// push.
func WithReplace() NavigateOption {
	return func(o *navigateOptions) { o.mode = HistoryReplace }
}

// WithHistory sets the history mode explicitly.
func WithHistory(mode HistoryMode) NavigateOption {
	return func(o *navigateOptions) { o.mode = mode }
}

// WithoutScroll skips scroll restoration for this transition.
func WithoutScroll() NavigateOption {
	return func(o *navigateOptions) { o.scroll = false }
}

func applyNavigateOptions(opts []NavigateOption) navigateOptions {
	o := navigateOptions{mode: HistoryPush, scroll: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
