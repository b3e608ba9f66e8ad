package router

import (
	"reflect"
	"testing"
)

func testLayout(rc RenderContext, child View) View { return child }

// stackPaths flattens a match stack into its compiled full paths.
func stackPaths(m Match) []string {
	paths := make([]string, 0, len(m.Stack))
	for _, rm := range m.Stack {
		paths = append(paths, rm.Compiled.FullPath)
	}
	return paths
}

func TestResolveStaticBeatsDynamicBeatsCatchAll(t *testing.T) {
	tree := mustCompile(t, []*Route{
		{Path: "/a", View: testView},
		{Path: "/a/:id", View: testView},
		{Path: "/a/*", View: testView},
	})

	tests := []struct {
		path     string
		wantLeaf string
	}{
		{"/a", "/a"},
		{"/a/5", "/a/:id"},
		{"/a/5/6", "/a/*"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m := tree.Resolve(tt.path)
			if m.Kind != ExactMatch {
				t.Fatalf("kind = %v, want exact", m.Kind)
			}
			if got := m.Leaf().Compiled.FullPath; got != tt.wantLeaf {
				t.Errorf("leaf = %s, want %s", got, tt.wantLeaf)
			}
		})
	}
}

func TestResolveStaticSiblingBeatsDynamic(t *testing.T) {
	tree := mustCompile(t, []*Route{
		{Path: "/users/:id", View: testView},
		{Path: "/users/new", View: testView},
	})

	m := tree.Resolve("/users/new")
	if got := m.Leaf().Compiled.FullPath; got != "/users/new" {
		t.Fatalf("leaf = %s, want /users/new", got)
	}

	m = tree.Resolve("/users/7")
	if got := m.Leaf().Compiled.FullPath; got != "/users/:id" {
		t.Fatalf("leaf = %s, want /users/:id", got)
	}
	if got := m.Params().Get("id"); got != "7" {
		t.Errorf("id = %q, want %q", got, "7")
	}
}

func TestResolveOptionalCatchAll(t *testing.T) {
	tree := mustCompile(t, []*Route{
		{Path: "/docs/:slug*?", View: testView},
	})

	m := tree.Resolve("/docs")
	if m.Kind != ExactMatch {
		t.Fatalf("kind = %v, want exact", m.Kind)
	}
	if got := m.Params().List("slug"); len(got) != 0 {
		t.Errorf("slug = %v, want empty", got)
	}

	m = tree.Resolve("/docs/a/b")
	if got := m.Params().List("slug"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("slug = %v, want [a b]", got)
	}
}

func TestResolveStaticOutranksSiblingOptionalCatchAll(t *testing.T) {
	tree := mustCompile(t, []*Route{
		{Path: "/docs/:slug*?", View: testView},
		{Path: "/docs", View: testView},
	})

	m := tree.Resolve("/docs")
	if got := m.Leaf().Compiled.FullPath; got != "/docs" {
		t.Errorf("leaf = %s, want the static /docs", got)
	}
}

func TestResolveNestedStack(t *testing.T) {
	tree := mustCompile(t, []*Route{
		{
			Path:   "/",
			Layout: testLayout,
			Children: []*Route{
				{Path: "shop", Layout: testLayout, Children: []*Route{
					{Path: ":category", View: testView, Children: []*Route{
						{Path: ":item", View: testView},
					}},
				}},
			},
		},
	})

	m := tree.Resolve("/shop/tools/hammer")
	if m.Kind != ExactMatch {
		t.Fatalf("kind = %v, want exact", m.Kind)
	}
	want := []string{"/", "/shop", "/shop/:category", "/shop/:category/:item"}
	if got := stackPaths(m); !reflect.DeepEqual(got, want) {
		t.Fatalf("stack = %v, want %v", got, want)
	}

	// Params accumulate root to leaf.
	leaf := m.Leaf()
	if leaf.Params.Get("category") != "tools" || leaf.Params.Get("item") != "hammer" {
		t.Errorf("params = %v", leaf.Params)
	}
}

func TestResolveDeeperExactWinsOverParent(t *testing.T) {
	tree := mustCompile(t, []*Route{
		{Path: "/blog", View: testView, Children: []*Route{
			{Path: ":post", View: testView},
		}},
	})

	m := tree.Resolve("/blog/hello")
	if got := m.Leaf().Compiled.FullPath; got != "/blog/:post" {
		t.Fatalf("leaf = %s, want /blog/:post", got)
	}
	if len(m.Stack) != 2 {
		t.Errorf("stack depth = %d, want 2", len(m.Stack))
	}
}

func TestResolvePartialMatch(t *testing.T) {
	// Layout-only parent with a child that doesn't match: the result is a
	// partial stack ending at the deepest prefix match.
	tree := mustCompile(t, []*Route{
		{Path: "/admin", Layout: testLayout, Children: []*Route{
			{Path: "users", View: testView},
		}},
	})

	m := tree.Resolve("/admin/settings")
	if m.Kind != PartialMatch {
		t.Fatalf("kind = %v, want partial", m.Kind)
	}
	if got := stackPaths(m); !reflect.DeepEqual(got, []string{"/admin"}) {
		t.Errorf("stack = %v, want [/admin]", got)
	}
}

func TestResolveNoMatch(t *testing.T) {
	tree := mustCompile(t, []*Route{
		{Path: "/a", View: testView},
	})

	m := tree.Resolve("/b")
	if m.Kind != NoMatch {
		t.Fatalf("kind = %v, want none", m.Kind)
	}
	if m.Leaf() != nil {
		t.Error("Leaf() should be nil for NoMatch")
	}
	if m.Params() != nil {
		t.Error("Params() should be nil for NoMatch")
	}
}

func TestResolveProbesChildrenOfNonMatchingParent(t *testing.T) {
	// The parent segment does not match /standalone, but the child's own
	// compiled pattern does; the stack contains only the child.
	tree := mustCompile(t, []*Route{
		{Path: "/section", Children: []*Route{
			{Path: "/standalone", View: testView},
		}},
	})

	m := tree.Resolve("/standalone")
	if m.Kind != ExactMatch {
		t.Fatalf("kind = %v, want exact", m.Kind)
	}
	if got := stackPaths(m); !reflect.DeepEqual(got, []string{"/standalone"}) {
		t.Errorf("stack = %v, want [/standalone]", got)
	}
}

func TestResolveRootLayoutAlwaysInStack(t *testing.T) {
	tree := mustCompile(t, []*Route{
		{Path: "/", Layout: testLayout, Children: []*Route{
			{Path: "about", View: testView},
		}},
	})

	m := tree.Resolve("/about")
	if got := stackPaths(m); !reflect.DeepEqual(got, []string{"/", "/about"}) {
		t.Fatalf("stack = %v, want [/ /about]", got)
	}
}

func TestResolveDecodesPercentEscapes(t *testing.T) {
	tree := mustCompile(t, []*Route{
		{Path: "/files/:name", View: testView},
		{Path: "/all/*rest", View: testView},
	})

	m := tree.Resolve("/files/a%20b")
	if got := m.Params().Get("name"); got != "a b" {
		t.Errorf("name = %q, want %q", got, "a b")
	}

	m = tree.Resolve("/all/x%2Fy/z")
	if got := m.Params().List("rest"); !reflect.DeepEqual(got, []string{"x/y", "z"}) {
		t.Errorf("rest = %v, want [x/y z]", got)
	}
}

func TestResolveCatchAllSpansSegments(t *testing.T) {
	tree := mustCompile(t, []*Route{
		{Path: "/wiki/*page", View: testView},
	})

	m := tree.Resolve("/wiki/a/b/c")
	if got := m.Params().List("page"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("page = %v, want [a b c]", got)
	}

	// Bare /wiki does not match a required catch-all.
	if m := tree.Resolve("/wiki"); m.Kind == ExactMatch {
		t.Error("/wiki should not exact-match a required catch-all")
	}
}
