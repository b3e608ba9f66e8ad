package nav

import (
	"context"

	"github.com/wayfind-ui/wayfind/pkg/routepath"
)

// Outcome classifies how a transition ended.
type Outcome string

const (
	// OutcomeCommitted means the target was mounted.
	OutcomeCommitted Outcome = "committed"

	// OutcomeBlocked means a hook, middleware, or guard vetoed.
	OutcomeBlocked Outcome = "blocked"

	// OutcomeRedirected means the transition handed off to a redirect.
	OutcomeRedirected Outcome = "redirected"

	// OutcomeNotFound means nothing renderable matched.
	OutcomeNotFound Outcome = "not_found"

	// OutcomeFailed means validation, loading, or a chunk load failed.
	OutcomeFailed Outcome = "failed"

	// OutcomeSuperseded means a newer transition took over.
	OutcomeSuperseded Outcome = "superseded"
)

// TransitionEnd finishes an observation started by ObserveTransition.
type TransitionEnd func(outcome Outcome, err error)

// TransitionObserver watches transitions for metrics and tracing. The engine
// calls ObserveTransition when a transition starts and the returned
// TransitionEnd exactly once when it settles. Redirect hops observe
// separately, each as its own transition.
type TransitionObserver interface {
	ObserveTransition(ctx context.Context, to routepath.Location) TransitionEnd
}
