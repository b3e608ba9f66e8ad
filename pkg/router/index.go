package router

import "strings"

// candidate pairs a compiled sibling with its position in the priority-sorted
// root slice, so index lookups can be replayed in the original order.
type candidate struct {
	node *CompiledRoute
	pos  int
}

// Index accelerates repeated lookups against the compiled root siblings by
// bucketing static-first siblings on their literal first segment. A lookup
// considers the matching bucket plus the rest list (generic dynamic/wildcard
// siblings and static parents with children, which must always be probed),
// merged back into priority order.
//
// Index.Resolve is equivalent to Tree.Resolve for every input: the only
// siblings a lookup skips are childless static-first nodes whose literal
// differs from the pathname's first segment, and both their exact and prefix
// patterns require that literal, so they can never contribute a match.
type Index struct {
	buckets map[string][]candidate
	rest    []candidate
}

// NewIndex builds an index over the tree's root siblings.
func NewIndex(t *Tree) *Index {
	ix := &Index{buckets: make(map[string][]candidate)}

	for pos, n := range t.roots {
		c := candidate{node: n, pos: pos}
		if len(n.segs) > 0 && n.segs[0].kind == segLiteral {
			lit := n.segs[0].literal
			ix.buckets[lit] = append(ix.buckets[lit], c)
			// A static parent's children can declare root-absolute
			// paths, so it stays probe-able outside its bucket too.
			if len(n.Children) > 0 {
				ix.rest = append(ix.rest, c)
			}
			continue
		}
		ix.rest = append(ix.rest, c)
	}
	return ix
}

// Resolve matches a normalized pathname using the index.
func (ix *Index) Resolve(pathname string) Match {
	bucket := ix.buckets[firstSegment(pathname)]
	best := Match{Kind: NoMatch}

	// Merge the bucket and the rest list by original priority position.
	// Nodes present in both are tried once.
	bi, ri := 0, 0
	for bi < len(bucket) || ri < len(ix.rest) {
		var c candidate
		switch {
		case bi == len(bucket):
			c, ri = ix.rest[ri], ri+1
		case ri == len(ix.rest):
			c, bi = bucket[bi], bi+1
		case bucket[bi].pos < ix.rest[ri].pos:
			c, bi = bucket[bi], bi+1
		case bucket[bi].pos > ix.rest[ri].pos:
			c, ri = ix.rest[ri], ri+1
		default:
			c, bi, ri = bucket[bi], bi+1, ri+1
		}

		m := resolveNode(c.node, pathname, nil)
		if m.Kind == ExactMatch {
			return m
		}
		if m.Kind == PartialMatch && len(m.Stack) > len(best.Stack) {
			best = m
		}
	}
	return best
}

// firstSegment returns the first raw path segment of a normalized pathname.
func firstSegment(pathname string) string {
	trimmed := strings.TrimPrefix(pathname, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}
