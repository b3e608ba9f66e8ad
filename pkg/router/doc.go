// Package router implements the route compiler and matcher.
//
// An authored Route tree is compiled once into an immutable Tree of
// regex-backed nodes whose siblings are pre-sorted by priority:
//
//	static literal > parent/missing > dynamic (:name) > wildcard (*)
//
// with longer literals winning rank ties. Lookup is a depth-first traversal
// over the sorted siblings; the first exact match wins, which gives static
// routes precedence over dynamic and wildcard patterns that could also
// match the same pathname.
//
// # Patterns
//
// Path segments:
//
//	users          static literal
//	:id            dynamic, captures one segment
//	:rest*         catch-all, captures one or more segments
//	:rest*?        optional catch-all, also matches the bare parent path
//	*              anonymous catch-all
//
// # Matching
//
//	tree, err := router.Compile(routes)
//	m := tree.Resolve("/users/42")
//	switch m.Kind {
//	case router.ExactMatch:   // m.Stack is root→leaf, leaf renderable
//	case router.PartialMatch: // only layouts/prefixes matched
//	case router.NoMatch:
//	}
//
// A Match is an explicit tagged union; Kind is always meaningful and Stack
// is empty only for NoMatch.
//
// Children of a non-matching parent are still probed against the full
// pathname. This makes a child reachable even when its declared parent
// segment does not match, and is intentional; see Index for the equivalent
// accelerated lookup.
package router
