package router

import (
	"strings"

	"github.com/wayfind-ui/wayfind/pkg/routepath"
)

// MatchKind tags a match result.
type MatchKind uint8

const (
	// NoMatch means nothing in the tree matched the pathname.
	NoMatch MatchKind = iota

	// PartialMatch means only ancestor prefixes/layouts matched; the
	// deepest matched route has no renderable leaf.
	PartialMatch

	// ExactMatch means the deepest matched route is renderable.
	ExactMatch
)

// String returns the kind's name.
func (k MatchKind) String() string {
	switch k {
	case PartialMatch:
		return "partial"
	case ExactMatch:
		return "exact"
	default:
		return "none"
	}
}

// RouteMatch is one entry of a match stack.
type RouteMatch struct {
	// Route is the matched authored route.
	Route *Route

	// Compiled is the matched compiled node.
	Compiled *CompiledRoute

	// Path is the concrete matched pathname portion.
	Path string

	// Params are the decoded captures from the root through this node.
	Params Params
}

// Match is the result of resolving a pathname: an explicit tagged union of
// no match, a partial (layout-only) match, or an exact match.
type Match struct {
	// Kind tags the result.
	Kind MatchKind

	// Stack is the ordered root-to-leaf match stack. Empty for NoMatch.
	Stack []RouteMatch
}

// Leaf returns the deepest entry of the stack, or nil.
func (m Match) Leaf() *RouteMatch {
	if len(m.Stack) == 0 {
		return nil
	}
	return &m.Stack[len(m.Stack)-1]
}

// Params returns the deepest entry's params, or nil.
func (m Match) Params() Params {
	if leaf := m.Leaf(); leaf != nil {
		return leaf.Params
	}
	return nil
}

// Resolve matches a normalized pathname against the compiled tree and
// returns the parent-to-leaf match stack.
//
// Siblings are tried in pre-sorted priority order; the first exact match
// found propagates immediately, which is what gives static routes precedence
// over dynamic ones that could also match. A partial result is kept only if
// it is the longest candidate seen.
func (t *Tree) Resolve(pathname string) Match {
	return resolveSiblings(t.roots, pathname, nil)
}

// resolveSiblings tries each sibling in priority order.
func resolveSiblings(nodes []*CompiledRoute, pathname string, stack []RouteMatch) Match {
	best := Match{Kind: NoMatch}

	for _, n := range nodes {
		m := resolveNode(n, pathname, stack)
		if m.Kind == ExactMatch {
			return m
		}
		if m.Kind == PartialMatch && len(m.Stack) > len(best.Stack) {
			best = m
		}
	}
	return best
}

// resolveNode resolves one compiled node against the pathname.
func resolveNode(n *CompiledRoute, pathname string, stack []RouteMatch) Match {
	ownExact := false
	matched := false
	var params Params
	matchedPath := pathname

	if sub := n.Exact.FindStringSubmatch(pathname); sub != nil {
		if p, ok := decodeCaptures(n.Captures, sub[1:]); ok {
			params = p
			ownExact = true
			matched = true
		}
	}

	if !matched && (len(n.Children) > 0 || n.Route.Layout != nil) {
		if n.Prefix == nil {
			// Root "/": prefixes everything.
			params = Params{}
			matchedPath = "/"
			matched = true
		} else if sub := n.Prefix.FindStringSubmatch(pathname); sub != nil {
			if p, ok := decodeCaptures(n.Captures, sub[1:]); ok {
				params = p
				matchedPath = strings.TrimSuffix(sub[0], "/")
				if matchedPath == "" {
					matchedPath = "/"
				}
				matched = true
			}
		}
	}

	if !matched {
		// Probe children of a non-matching parent against the full
		// pathname: a child whose own pattern matches is reachable even
		// when its declared parent segment does not match.
		if len(n.Children) > 0 {
			return resolveSiblings(n.Children, pathname, stack)
		}
		return Match{Kind: NoMatch}
	}

	rm := RouteMatch{
		Route:    n.Route,
		Compiled: n,
		Path:     matchedPath,
		Params:   params,
	}
	newStack := make([]RouteMatch, len(stack), len(stack)+1)
	copy(newStack, stack)
	newStack = append(newStack, rm)

	if len(n.Children) > 0 {
		child := resolveSiblings(n.Children, pathname, newStack)
		if child.Kind == ExactMatch {
			return child
		}
		if ownExact && n.Route.Renderable() {
			return Match{Kind: ExactMatch, Stack: newStack}
		}
		if child.Kind == PartialMatch {
			return child
		}
		return Match{Kind: PartialMatch, Stack: newStack}
	}

	if ownExact && n.Route.Renderable() {
		return Match{Kind: ExactMatch, Stack: newStack}
	}
	return Match{Kind: PartialMatch, Stack: newStack}
}

// decodeCaptures decodes raw regex submatches into params.
// Non-catch-all captures are percent-decoded individually; catch-all
// captures are split on "/", empties dropped, each piece decoded.
func decodeCaptures(captures []Capture, raw []string) (Params, bool) {
	params := make(Params, len(captures))

	for i, c := range captures {
		if i >= len(raw) {
			break
		}
		if c.CatchAll {
			list, err := routepath.DecodeCatchAll(raw[i])
			if err != nil {
				return nil, false
			}
			params[c.Name] = ParamValue{List: list, CatchAll: true}
		} else {
			v, err := routepath.DecodeSegment(raw[i])
			if err != nil {
				return nil, false
			}
			params[c.Name] = ParamValue{Value: v}
		}
	}
	return params, true
}
