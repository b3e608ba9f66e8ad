package router

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/wayfind-ui/wayfind/pkg/routepath"
)

// Segment priority ranks. Siblings are compared rank-by-rank, slot-by-slot;
// a missing slot counts as the parent rank so parents are explored before
// dynamic siblings that could also match. Optional catch-alls rank below a
// parent slot so a bare static route wins its own path over a sibling
// ":name*?" pattern that also accepts it.
const (
	rankLiteral          = 2.0
	rankParent           = 1.5
	rankDynamic          = 1.0
	rankOptionalCatchAll = 0.5
	rankCatchAll         = 0.0
)

// segKind enumerates path segment pattern kinds.
type segKind uint8

const (
	segLiteral segKind = iota
	segDynamic
	segCatchAll
	segOptionalCatchAll
)

// segment is one parsed slot of a path pattern.
type segment struct {
	kind    segKind
	literal string // for segLiteral
	name    string // capture name for non-literals
}

// rank returns the segment's priority rank.
func (s segment) rank() float64 {
	switch s.kind {
	case segLiteral:
		return rankLiteral
	case segDynamic:
		return rankDynamic
	case segOptionalCatchAll:
		return rankOptionalCatchAll
	default:
		return rankCatchAll
	}
}

// Capture describes one ordered capture group of a compiled pattern.
type Capture struct {
	// Name is the parameter name.
	Name string

	// CatchAll marks captures decoded as ordered segment lists.
	CatchAll bool
}

// CompiledRoute is a route annotated with pre-built matching patterns and a
// stable identity. Built once from a Route tree; never mutated.
type CompiledRoute struct {
	// ID is the stable per-route identity, assigned at compile time.
	ID string

	// Route is the authored definition.
	Route *Route

	// FullPath is the normalized pattern joined against all ancestors.
	FullPath string

	// Exact matches the whole pathname (anchored start and end).
	Exact *regexp.Regexp

	// Prefix matches a leading portion of the pathname, requiring either
	// end-of-string or a following "/". Nil for the root "/".
	Prefix *regexp.Regexp

	// Captures are the ordered capture descriptors shared by both patterns.
	Captures []Capture

	// Children are the compiled child routes, pre-sorted by priority.
	Children []*CompiledRoute

	segs []segment
}

// Tree is an immutable compiled route tree. Root siblings and every
// Children slice are stored pre-sorted by priority: static > parent >
// dynamic > wildcard, deeper literal and longer segment winning ties.
type Tree struct {
	roots []*CompiledRoute
	byID  map[string]*CompiledRoute
}

// Roots returns the compiled top-level routes in priority order.
func (t *Tree) Roots() []*CompiledRoute {
	return t.roots
}

// ByID returns the compiled route with the given identity.
func (t *Tree) ByID(id string) (*CompiledRoute, bool) {
	cr, ok := t.byID[id]
	return cr, ok
}

// Walk visits every compiled route depth-first in priority order.
// Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(*CompiledRoute) bool) {
	var walk func(nodes []*CompiledRoute) bool
	walk = func(nodes []*CompiledRoute) bool {
		for _, n := range nodes {
			if !fn(n) {
				return false
			}
			if !walk(n.Children) {
				return false
			}
		}
		return true
	}
	walk(t.roots)
}

// CompileError reports a problem with one authored route.
type CompileError struct {
	// Path is the route's full pattern.
	Path string

	// Message describes the problem.
	Message string
}

func (e CompileError) Error() string {
	return fmt.Sprintf("route %s: %s", e.Path, e.Message)
}

// CompileErrors aggregates every problem found while compiling a tree.
type CompileErrors []CompileError

func (e CompileErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d route compile errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// compiler holds the per-compilation state: the monotonic identity counter
// and accumulated errors.
type compiler struct {
	nextID int
	errs   CompileErrors
	seen   map[string]string // renderable fullPath -> first ID
}

// Compile builds an immutable Tree from an authored route forest.
// The authored routes must not be mutated afterwards.
func Compile(routes []*Route) (*Tree, error) {
	c := &compiler{seen: make(map[string]string)}
	t := &Tree{byID: make(map[string]*CompiledRoute)}

	for _, r := range routes {
		if cr := c.compile(r, "/", t); cr != nil {
			t.roots = append(t.roots, cr)
		}
	}
	sortSiblings(t.roots)

	if len(c.errs) > 0 {
		return nil, c.errs
	}
	return t, nil
}

// compile compiles one route and its children against the parent prefix.
func (c *compiler) compile(r *Route, parentPath string, t *Tree) *CompiledRoute {
	full := routepath.Join(parentPath, r.Path)

	segs, err := parseSegments(full)
	if err != nil {
		c.errs = append(c.errs, CompileError{Path: full, Message: err.Error()})
		return nil
	}

	exact, prefix, captures := buildPatterns(segs)

	c.nextID++
	cr := &CompiledRoute{
		ID:       fmt.Sprintf("r%d", c.nextID),
		Route:    r,
		FullPath: full,
		Exact:    regexp.MustCompile(exact),
		Captures: captures,
		segs:     segs,
	}
	if prefix != "" {
		cr.Prefix = regexp.MustCompile(prefix)
	}
	t.byID[cr.ID] = cr

	if r.Renderable() {
		if prev, dup := c.seen[full]; dup {
			c.errs = append(c.errs, CompileError{
				Path:    full,
				Message: fmt.Sprintf("duplicate renderable route (also %s)", prev),
			})
		} else {
			c.seen[full] = cr.ID
		}
	}

	for _, child := range r.Children {
		if cc := c.compile(child, full, t); cc != nil {
			cr.Children = append(cr.Children, cc)
		}
	}
	sortSiblings(cr.Children)

	return cr
}

// parseSegments parses a normalized full path pattern into segments.
func parseSegments(full string) ([]segment, error) {
	if full == "/" {
		return nil, nil
	}

	raw := strings.Split(strings.TrimPrefix(full, "/"), "/")
	segs := make([]segment, 0, len(raw))
	names := make(map[string]struct{}, len(raw))

	for _, part := range raw {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, err
		}
		if seg.kind != segLiteral {
			if _, dup := names[seg.name]; dup {
				return nil, fmt.Errorf("duplicate parameter %q", seg.name)
			}
			names[seg.name] = struct{}{}
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

// parseSegment parses one raw path segment pattern.
func parseSegment(raw string) (segment, error) {
	switch {
	case raw == "*":
		return segment{kind: segCatchAll, name: "*"}, nil

	case strings.HasPrefix(raw, "*"):
		return segment{kind: segCatchAll, name: raw[1:]}, nil

	case strings.HasPrefix(raw, ":"):
		name := raw[1:]
		kind := segDynamic
		if strings.HasSuffix(name, "*?") {
			kind = segOptionalCatchAll
			name = strings.TrimSuffix(name, "*?")
		} else if strings.HasSuffix(name, "*") {
			kind = segCatchAll
			name = strings.TrimSuffix(name, "*")
		}
		if name == "" {
			return segment{}, fmt.Errorf("empty parameter name in segment %q", raw)
		}
		return segment{kind: kind, name: name}, nil

	default:
		return segment{kind: segLiteral, literal: raw}, nil
	}
}

// buildPatterns builds the exact and prefix regular expressions and the
// ordered capture descriptors for a segment list.
//
// The exact pattern anchors start and end; the prefix pattern anchors start
// and requires either end-of-string or a following "/". The root "/" has no
// prefix pattern: it prefixes everything.
func buildPatterns(segs []segment) (exact, prefix string, captures []Capture) {
	if len(segs) == 0 {
		return "^/$", "", nil
	}

	var b strings.Builder
	for i, s := range segs {
		switch s.kind {
		case segLiteral:
			b.WriteString("/")
			b.WriteString(regexp.QuoteMeta(s.literal))

		case segDynamic:
			b.WriteString("/([^/]+)")
			captures = append(captures, Capture{Name: s.name})

		case segCatchAll:
			// Lazy unless last: a catch-all can be followed by more
			// literal segments, resolved at lookup time.
			if i == len(segs)-1 {
				b.WriteString("/(.+)")
			} else {
				b.WriteString("/(.+?)")
			}
			captures = append(captures, Capture{Name: s.name, CatchAll: true})

		case segOptionalCatchAll:
			b.WriteString("(?:/(.*))?")
			captures = append(captures, Capture{Name: s.name, CatchAll: true})
		}
	}

	body := b.String()
	return "^" + body + "$", "^" + body + "(?:/|$)", captures
}

// sortSiblings sorts a sibling slice in place by priority. The sort is
// stable, so full ties keep authored order.
func sortSiblings(nodes []*CompiledRoute) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return comparePriority(nodes[i], nodes[j]) < 0
	})
}

// comparePriority orders two compiled siblings: negative means a sorts
// before b. Ranks are compared slot-by-slot; a missing slot counts as the
// parent rank. On a literal-literal tie the longer literal wins, then
// lexical order.
func comparePriority(a, b *CompiledRoute) int {
	maxDepth := len(a.segs)
	if len(b.segs) > maxDepth {
		maxDepth = len(b.segs)
	}

	for i := 0; i < maxDepth; i++ {
		ra, rb := rankAt(a.segs, i), rankAt(b.segs, i)
		if ra != rb {
			if ra > rb {
				return -1
			}
			return 1
		}

		if i < len(a.segs) && i < len(b.segs) &&
			a.segs[i].kind == segLiteral && b.segs[i].kind == segLiteral {
			la, lb := a.segs[i].literal, b.segs[i].literal
			if la != lb {
				if len(la) != len(lb) {
					if len(la) > len(lb) {
						return -1
					}
					return 1
				}
				return strings.Compare(la, lb)
			}
		}
	}
	return 0
}

// rankAt returns the rank of slot i, or the parent rank past the end.
func rankAt(segs []segment, i int) float64 {
	if i >= len(segs) {
		return rankParent
	}
	return segs[i].rank()
}
