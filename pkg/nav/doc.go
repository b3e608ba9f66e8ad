// Package nav drives navigation over a compiled route tree: a cancellable,
// redirect-aware transition state machine with a guard/middleware/validation
// pipeline and a bounded, resource-releasing preload cache.
//
// A transition moves the engine idle → loading → {idle, error}. Each
// transition owns a strictly increasing token; after every suspension point
// (hooks, guards, chunk loads, validation, loaders) the pipeline re-checks
// that its token is still current and abandons silently when superseded.
// Superseding — starting a newer transition — is the only cancellation
// primitive.
//
// Preloaded route data is bounded by an LRU cache whose eviction callback
// aborts the entry's loader, disposes its scope, and purges its index
// registrations before the evicting operation returns, so a dropped entry
// can never leak a fetch or a timer.
package nav
