package nav

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wayfind-ui/wayfind/pkg/routepath"
	"github.com/wayfind-ui/wayfind/pkg/router"
)

// waitErr drains a result channel, failing the test on timeout.
func waitErr(t *testing.T, ch <-chan error) {
	t.Helper()
	select {
	case err := <-ch:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for result")
	}
}

func compileTree(t *testing.T, routes []*router.Route) *router.Tree {
	t.Helper()
	tree, err := router.Compile(routes)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return tree
}

func newTestCache(t *testing.T, routes []*router.Route, size int) (*PreloadCache, *router.Tree) {
	t.Helper()
	tree := compileTree(t, routes)
	return NewPreloadCache(tree, nil, size, "", testLogger()), tree
}

// leafKey computes the cache key PreloadPath uses for the leaf of target.
func leafKey(t *testing.T, tree *router.Tree, target string) string {
	t.Helper()
	loc, err := routepath.Parse(target, "")
	if err != nil {
		t.Fatal(err)
	}
	m := tree.Resolve(loc.Pathname)
	if m.Kind != router.ExactMatch {
		t.Fatalf("%s does not match exactly", target)
	}
	return entryKey(m.Leaf().Compiled.ID, loc)
}

func TestPreloadPathWarmsStack(t *testing.T) {
	var rootCalls, leafCalls atomic.Int32
	c, tree := newTestCache(t, []*router.Route{
		{Path: "/", Layout: wrapLayout("root"),
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) {
				rootCalls.Add(1)
				return "root-data", nil
			},
			Children: []*router.Route{
				{Path: "posts/:slug", View: view("post"),
					Loader: func(ctx context.Context, lc router.LoadContext) (any, error) {
						leafCalls.Add(1)
						return "post-" + lc.Params.Get("slug"), nil
					}},
			}},
	}, 8)

	if err := c.PreloadPath(context.Background(), "/posts/hello"); err != nil {
		t.Fatalf("PreloadPath: %v", err)
	}
	if rootCalls.Load() != 1 || leafCalls.Load() != 1 {
		t.Errorf("loader calls = %d/%d, want 1/1", rootCalls.Load(), leafCalls.Load())
	}
	if got := c.Len(); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}

	loc, _ := routepath.Parse("/posts/hello", "")
	leaf := tree.Resolve("/posts/hello").Leaf()
	e := c.lookup(leaf.Compiled.ID, loc)
	if e == nil {
		t.Fatal("leaf entry missing")
	}
	st, data, err := e.snapshot()
	if st != StatusFulfilled || err != nil || data != "post-hello" {
		t.Errorf("entry = %v/%v/%v, want fulfilled post-hello", st, data, err)
	}
}

func TestPreloadPartialMatchPreloadsNothing(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestCache(t, []*router.Route{
		{Path: "/admin", Layout: wrapLayout("admin"),
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) {
				calls.Add(1)
				return nil, nil
			},
			Children: []*router.Route{{Path: "settings", View: view("settings")}}},
	}, 8)

	if err := c.PreloadPath(context.Background(), "/admin/missing"); err != nil {
		t.Fatalf("PreloadPath: %v", err)
	}
	if calls.Load() != 0 || c.Len() != 0 {
		t.Errorf("calls = %d, Len = %d, want 0/0", calls.Load(), c.Len())
	}
}

func TestPreloadValidationSkipsRoute(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestCache(t, []*router.Route{
		{Path: "/items/:id", View: view("item"),
			Schema: router.SchemaFunc(func(p router.Params, q url.Values) error {
				if !isDigits(p.Get("id")) {
					return errors.New("id must be numeric")
				}
				return nil
			}),
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) {
				calls.Add(1)
				return nil, nil
			}},
	}, 8)

	// Invalid params skip the loader with a warning, not an error.
	if err := c.PreloadPath(context.Background(), "/items/abc"); err != nil {
		t.Fatalf("PreloadPath: %v", err)
	}
	if calls.Load() != 0 || c.Len() != 0 {
		t.Errorf("calls = %d, Len = %d, want 0/0", calls.Load(), c.Len())
	}

	if err := c.PreloadPath(context.Background(), "/items/42"); err != nil {
		t.Fatalf("PreloadPath: %v", err)
	}
	if calls.Load() != 1 || c.Len() != 1 {
		t.Errorf("calls = %d, Len = %d, want 1/1", calls.Load(), c.Len())
	}
}

func TestDeleteAbortsLoader(t *testing.T) {
	ctxCh := make(chan context.Context, 1)
	c, tree := newTestCache(t, []*router.Route{
		{Path: "/slow", View: view("slow"),
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) {
				ctxCh <- ctx
				<-ctx.Done()
				return nil, ctx.Err()
			}},
	}, 8)

	pctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.PreloadPath(pctx, "/slow") }()

	var loaderCtx context.Context
	select {
	case loaderCtx = <-ctxCh:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for loader to start")
	}

	// Eviction cancels the loader's context before the call returns.
	if !c.Delete(leafKey(t, tree, "/slow")) {
		t.Fatal("Delete returned false")
	}
	if loaderCtx.Err() == nil {
		t.Error("loader context must be cancelled when Delete returns")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}

	stop()
	waitErr(t, done)
}

func TestCapacityEvictionPurgesMetadata(t *testing.T) {
	c, tree := newTestCache(t, []*router.Route{
		{Path: "/a", View: view("a"), Tags: []string{"page"},
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) { return "a", nil }},
		{Path: "/b", View: view("b"), Tags: []string{"page"},
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) { return "b", nil }},
	}, 1)

	ctx := context.Background()
	if err := c.PreloadPath(ctx, "/a"); err != nil {
		t.Fatal(err)
	}
	if err := c.PreloadPath(ctx, "/b"); err != nil {
		t.Fatal(err)
	}

	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	if _, ok := c.GetMetadata(leafKey(t, tree, "/a")); ok {
		t.Error("evicted entry's metadata must be purged")
	}
	if md, ok := c.GetMetadata(leafKey(t, tree, "/b")); !ok || md.Pattern != "/b" {
		t.Errorf("surviving metadata = %+v, %v", md, ok)
	}

	// The tag index only knows the survivor.
	if got := c.InvalidateByTag("page"); got != 1 {
		t.Errorf("InvalidateByTag = %d, want 1", got)
	}
}

func TestInvalidateByTag(t *testing.T) {
	c, _ := newTestCache(t, []*router.Route{
		{Path: "/p1", View: view("p1"), Tags: []string{"posts"},
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) { return 1, nil }},
		{Path: "/p2", View: view("p2"), Tags: []string{"posts", "featured"},
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) { return 2, nil }},
		{Path: "/about", View: view("about"), Tags: []string{"static"},
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) { return 3, nil }},
	}, 8)

	ctx := context.Background()
	for _, p := range []string{"/p1", "/p2", "/about"} {
		if err := c.PreloadPath(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	if got := c.InvalidateByTag("posts"); got != 2 {
		t.Errorf("InvalidateByTag(posts) = %d, want 2", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if got := c.InvalidateByTag("posts"); got != 0 {
		t.Errorf("second InvalidateByTag(posts) = %d, want 0", got)
	}
	if got := c.InvalidateByTag("  "); got != 0 {
		t.Errorf("InvalidateByTag(blank) = %d, want 0", got)
	}
}

func TestInvalidateWhere(t *testing.T) {
	c, _ := newTestCache(t, []*router.Route{
		{Path: "/keep", View: view("keep"),
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) { return 1, nil }},
		{Path: "/drop", View: view("drop"),
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) { return 2, nil }},
	}, 8)

	ctx := context.Background()
	for _, p := range []string{"/keep", "/drop"} {
		if err := c.PreloadPath(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.InvalidateWhere(func(v EntryView) (bool, error) {
		return v.Metadata.Pattern == "/drop", nil
	})
	if err != nil || n != 1 {
		t.Fatalf("InvalidateWhere = %d, %v, want 1, nil", n, err)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestInvalidateWhereFailsClosed(t *testing.T) {
	c, _ := newTestCache(t, []*router.Route{
		{Path: "/x", View: view("x"),
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) { return 1, nil }},
		{Path: "/y", View: view("y"),
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) { return 2, nil }},
	}, 8)

	ctx := context.Background()
	for _, p := range []string{"/x", "/y"} {
		if err := c.PreloadPath(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	boom := errors.New("predicate exploded")
	n, err := c.InvalidateWhere(func(v EntryView) (bool, error) {
		if v.Metadata.Pattern == "/y" {
			return false, boom
		}
		return true, nil
	})
	if !errors.Is(err, boom) || n != 0 {
		t.Fatalf("InvalidateWhere = %d, %v, want 0 and the predicate error", n, err)
	}
	// A failing sweep deletes nothing.
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestPendingEntryReused(t *testing.T) {
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	c, _ := newTestCache(t, []*router.Route{
		{Path: "/shared", View: view("shared"),
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) {
				calls.Add(1)
				close(entered)
				<-release
				return "shared", nil
			}},
	}, 8)

	ctx := context.Background()
	first := make(chan error, 1)
	go func() { first <- c.PreloadPath(ctx, "/shared") }()
	waitFor(t, entered, "first preload to start its loader")

	second := make(chan error, 1)
	go func() { second <- c.PreloadPath(ctx, "/shared") }()

	close(release)
	waitErr(t, first)
	waitErr(t, second)

	if got := calls.Load(); got != 1 {
		t.Errorf("loader calls = %d, want 1 (pending entry reused)", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestRejectedEntryReplaced(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestCache(t, []*router.Route{
		{Path: "/flaky", View: view("flaky"),
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) {
				if calls.Add(1) == 1 {
					return nil, errors.New("first attempt fails")
				}
				return "ok", nil
			}},
	}, 8)

	ctx := context.Background()
	if err := c.PreloadPath(ctx, "/flaky"); err != nil {
		t.Fatal(err)
	}
	if err := c.PreloadPath(ctx, "/flaky"); err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("loader calls = %d, want 2 (rejected entry replaced)", got)
	}
}

func TestClearAbortsEverything(t *testing.T) {
	c, _ := newTestCache(t, []*router.Route{
		{Path: "/a", View: view("a"), Tags: []string{"all"},
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) { return 1, nil }},
		{Path: "/b", View: view("b"), Tags: []string{"all"},
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) { return 2, nil }},
	}, 8)

	ctx := context.Background()
	for _, p := range []string{"/a", "/b"} {
		if err := c.PreloadPath(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
	if got := c.InvalidateByTag("all"); got != 0 {
		t.Errorf("tag index survived Clear: %d", got)
	}
}

func TestSetMetadataResyncsTags(t *testing.T) {
	c, tree := newTestCache(t, []*router.Route{
		{Path: "/doc", View: view("doc"), Tags: []string{"old"},
			Loader: func(ctx context.Context, lc router.LoadContext) (any, error) { return 1, nil }},
	}, 8)

	if err := c.PreloadPath(context.Background(), "/doc"); err != nil {
		t.Fatal(err)
	}
	key := leafKey(t, tree, "/doc")

	md, ok := c.GetMetadata(key)
	if !ok {
		t.Fatal("metadata missing")
	}
	md.Tags = []string{"new"}
	c.SetMetadata(key, md)

	if got := c.InvalidateByTag("old"); got != 0 {
		t.Errorf("stale tag still indexed: %d", got)
	}
	if got := c.InvalidateByTag("new"); got != 1 {
		t.Errorf("InvalidateByTag(new) = %d, want 1", got)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) < 0
}
