package reactive

import "testing"

func TestScopeCleanupOrder(t *testing.T) {
	s := NewScope(nil)

	var order []int
	s.OnCleanup(func() { order = append(order, 1) })
	s.OnCleanup(func() { order = append(order, 2) })
	s.OnCleanup(func() { order = append(order, 3) })

	s.Dispose()

	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Errorf("cleanup order = %v, want [3 2 1]", order)
	}
}

func TestScopeDisposesChildrenFirst(t *testing.T) {
	parent := NewScope(nil)
	child := NewScope(parent)

	var order []string
	parent.OnCleanup(func() { order = append(order, "parent") })
	child.OnCleanup(func() { order = append(order, "child") })

	parent.Dispose()

	if len(order) != 2 || order[0] != "child" || order[1] != "parent" {
		t.Errorf("order = %v, want [child parent]", order)
	}
	if !child.IsDisposed() {
		t.Error("child should be disposed with parent")
	}
}

func TestScopeDisposeIdempotent(t *testing.T) {
	s := NewScope(nil)

	calls := 0
	s.OnCleanup(func() { calls++ })

	s.Dispose()
	s.Dispose()

	if calls != 1 {
		t.Errorf("cleanup calls = %d, want 1", calls)
	}
}

func TestScopeOnCleanupAfterDisposeRunsImmediately(t *testing.T) {
	s := NewScope(nil)
	s.Dispose()

	ran := false
	s.OnCleanup(func() { ran = true })

	if !ran {
		t.Error("cleanup registered after dispose should run immediately")
	}
}

func TestScopeChildDisposeDetachesFromParent(t *testing.T) {
	parent := NewScope(nil)
	child := NewScope(parent)

	calls := 0
	child.OnCleanup(func() { calls++ })

	child.Dispose()
	parent.Dispose()

	if calls != 1 {
		t.Errorf("cleanup calls = %d, want 1", calls)
	}
	if parent.IsDisposed() != true {
		t.Error("parent should be disposed")
	}
}

func TestScopeRun(t *testing.T) {
	s := NewScope(nil)

	ran := false
	if !s.Run(func() { ran = true }) {
		t.Error("Run on a live scope should execute")
	}
	if !ran {
		t.Error("fn did not run")
	}

	s.Dispose()
	if s.Run(func() { t.Error("fn ran on disposed scope") }) {
		t.Error("Run on a disposed scope should report false")
	}
}

func TestScopeParent(t *testing.T) {
	root := NewScope(nil)
	child := NewScope(root)

	if root.Parent() != nil {
		t.Error("root scope should have nil parent")
	}
	if child.Parent() != root {
		t.Error("child scope should point at its parent")
	}
}
