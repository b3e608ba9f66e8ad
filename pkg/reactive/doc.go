// Package reactive provides the minimal reactive primitives consumed by the
// navigation engine: signals and ownership scopes.
//
// # Signals
//
// Signal[T] is a subscribable value container:
//
//	status := reactive.NewSignal("idle")
//	unsub := status.Subscribe(func(v string) { fmt.Println(v) })
//	status.Set("loading") // notifies subscribers
//	unsub()
//
// # Scopes
//
// Scope is an ownership boundary. Resources register cleanups on the scope
// that owns them; disposing the scope disposes children first (in reverse
// creation order), then runs cleanups in reverse registration order:
//
//	scope := reactive.NewScope(nil)
//	child := reactive.NewScope(scope)
//	child.OnCleanup(func() { /* release */ })
//	scope.Dispose() // disposes child, runs its cleanups
//
// # Thread Safety
//
// All primitives are safe for concurrent use. Signal notification uses a
// copy-before-notify pattern so subscribers may unsubscribe during delivery.
package reactive
