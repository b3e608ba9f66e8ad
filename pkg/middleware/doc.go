// Package middleware provides production-grade observability for wayfind
// navigation.
//
// This package includes:
//   - OpenTelemetry distributed tracing for transitions
//   - Prometheus metrics for transitions and the preload cache
//
// # OpenTelemetry Observer
//
// The OpenTelemetry observer traces every navigation transition. Each
// redirect hop is its own span, so a redirect chain reads as a sequence of
// sibling spans ending in the committed (or failed) hop.
//
//	engine, err := nav.NewEngine(nav.Config{
//	    Routes:    routes,
//	    Observers: []nav.TransitionObserver{middleware.OpenTelemetry()},
//	})
//
// Configure with options:
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-app"),
//	    middleware.WithIncludeQuery(true),
//	    middleware.WithTransitionFilter(func(to routepath.Location) bool {
//	        return to.Pathname != "/healthz"
//	    }),
//	)
//
// # Prometheus Metrics
//
// The Prometheus observer collects metrics about navigation:
//   - wayfind_navigations_total: Transitions by path and outcome
//   - wayfind_navigation_duration_seconds: Transition duration histogram
//   - wayfind_navigation_errors_total: Failures by path and error type
//   - wayfind_redirects_total: Redirect hops taken
//
//	engine, err := nav.NewEngine(nav.Config{
//	    Routes:    routes,
//	    Observers: []nav.TransitionObserver{middleware.Prometheus()},
//	})
//
// Then expose metrics on a separate port:
//
//	http.Handle("/metrics", promhttp.Handler())
//	go http.ListenAndServe(":9090", nil)
package middleware
