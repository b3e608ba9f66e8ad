package router

// decisionKind enumerates guard/middleware outcomes.
type decisionKind uint8

const (
	decisionAllow decisionKind = iota
	decisionBlock
	decisionRedirect
)

// Decision is the outcome of a middleware or guard step. A step either
// allows the transition to continue, blocks it (engine returns to idle), or
// redirects it into a fresh transition.
type Decision struct {
	kind   decisionKind
	target string
}

// Allow lets the transition continue.
func Allow() Decision {
	return Decision{kind: decisionAllow}
}

// Block aborts the transition; the engine returns to idle.
func Block() Decision {
	return Decision{kind: decisionBlock}
}

// Redirect aborts the transition and starts a new one to target.
// An empty target is treated as Allow.
func Redirect(target string) Decision {
	if target == "" {
		return Allow()
	}
	return Decision{kind: decisionRedirect, target: target}
}

// Allowed reports whether the transition may continue.
func (d Decision) Allowed() bool {
	return d.kind == decisionAllow
}

// Blocked reports whether the transition was blocked.
func (d Decision) Blocked() bool {
	return d.kind == decisionBlock
}

// Target returns the redirect target, and whether this is a redirect.
func (d Decision) Target() (string, bool) {
	return d.target, d.kind == decisionRedirect
}
