package nav

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the navigation engine.
var (
	// ErrTooManyRedirects is returned when a redirect chain exceeds the
	// hop bound. Fatal to the transition, not to the engine.
	ErrTooManyRedirects = errors.New("nav: too many redirects")

	// ErrBlocked is returned when a hook, middleware, or guard vetoes the
	// transition. The engine returns to idle.
	ErrBlocked = errors.New("nav: navigation blocked")

	// ErrSuperseded is returned to a caller whose transition was replaced
	// by a newer one. A superseded transition performs no observable
	// mutation.
	ErrSuperseded = errors.New("nav: transition superseded")

	// ErrStopped is returned when the engine is not running.
	ErrStopped = errors.New("nav: engine stopped")

	// ErrNotFound is returned when no renderable route matched the target.
	// The engine renders a not-found boundary and returns to idle.
	ErrNotFound = errors.New("nav: no route matched")

	// ErrNoHistory is returned by Back when there is no previous entry.
	ErrNoHistory = errors.New("nav: no previous history entry")
)

// LoaderError reports a loader or preload rejection for one route. Recovered
// via the nearest error boundary; the previous route stays committed.
type LoaderError struct {
	// Pattern is the failing route's full path pattern.
	Pattern string

	// Err is the loader's error.
	Err error
}

func (e *LoaderError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Pattern, e.Err)
}

func (e *LoaderError) Unwrap() error {
	return e.Err
}

// HookError reports an exception from a user hook or cleanup. Caught and
// logged at the phase boundary; never left unhandled.
type HookError struct {
	// Hook names the failing hook ("beforeNavigate", "guard", ...).
	Hook string

	// Err is the hook's error.
	Err error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("hook %s: %v", e.Hook, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// ChunkError reports a failed code-split chunk load for a route.
type ChunkError struct {
	// Pattern is the route's full path pattern.
	Pattern string

	// Err is the load failure.
	Err error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("loading chunk for %s: %v", e.Pattern, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}
