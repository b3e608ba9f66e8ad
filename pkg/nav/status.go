package nav

import (
	"github.com/wayfind-ui/wayfind/pkg/routepath"
	"github.com/wayfind-ui/wayfind/pkg/router"
)

// Phase is the engine's coarse state: idle, loading, or error.
type Phase uint8

const (
	// PhaseIdle means no transition is in flight.
	PhaseIdle Phase = iota

	// PhaseLoading means a transition is running its pipeline.
	PhaseLoading

	// PhaseError means the last transition failed; the previously
	// committed route is still mounted.
	PhaseError
)

// String returns the phase's name.
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// Status is the machine-readable engine state exposed on the status signal.
type Status struct {
	// Phase is the coarse state.
	Phase Phase

	// To is the transition target. Zero for idle.
	To routepath.Location

	// Err is the failure. Set only for PhaseError.
	Err error
}

// RouteState is the committed route exposed on the route signal.
type RouteState struct {
	// Location is the committed navigation target.
	Location routepath.Location

	// Match is the committed match stack.
	Match router.Match

	// Data holds loader results keyed by compiled route ID.
	Data map[string]any
}
