package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/wayfind-ui/wayfind/pkg/nav"
	"github.com/wayfind-ui/wayfind/pkg/routepath"
	"github.com/wayfind-ui/wayfind/pkg/router"
)

// MetricsConfig configures the Prometheus transition observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "wayfind").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for transition duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus transition observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "wayfind",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for wayfind navigation.
type metrics struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	navigationErrors   *prometheus.CounterVec
	redirectsTotal     prometheus.Counter
	preloadHits        prometheus.Counter
	preloadMisses      prometheus.Counter
	preloadEvictions   prometheus.Counter
	preloadEntries     prometheus.Gauge
}

// globalMetrics is the singleton metrics instance.
// Created on first call to Prometheus().
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

// initMetrics initializes the Prometheus metrics.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigation transitions by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"path", "outcome"}),

		navigationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_duration_seconds",
			Help:        "Navigation transition duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"path"}),

		navigationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigation_errors_total",
			Help:        "Total number of failed navigation transitions by error type",
			ConstLabels: config.ConstLabels,
		}, []string{"path", "error_type"}),

		redirectsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "redirects_total",
			Help:        "Total number of redirect hops taken by transitions",
			ConstLabels: config.ConstLabels,
		}),

		preloadHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "preload_hits_total",
			Help:        "Navigations that reused a warm preload entry",
			ConstLabels: config.ConstLabels,
		}),

		preloadMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "preload_misses_total",
			Help:        "Navigations that fell back to a direct loader call",
			ConstLabels: config.ConstLabels,
		}),

		preloadEvictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "preload_evictions_total",
			Help:        "Preload cache entries aborted by eviction or invalidation",
			ConstLabels: config.ConstLabels,
		}),

		preloadEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "preload_entries",
			Help:        "Current number of entries in the preload cache",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus creates a transition observer that collects Prometheus metrics
// for every navigation.
//
// Metrics collected:
//   - wayfind_navigations_total: Counter of transitions by path and outcome
//   - wayfind_navigation_duration_seconds: Histogram of transition duration
//   - wayfind_navigation_errors_total: Counter of failures by path and error type
//   - wayfind_redirects_total: Counter of redirect hops
//   - wayfind_preload_hits_total / _misses_total: Preload cache effectiveness
//     (when RecordPreloadHit/RecordPreloadMiss are called)
//   - wayfind_preload_evictions_total, wayfind_preload_entries: Cache churn
//
// Example:
//
//	engine, err := nav.NewEngine(nav.Config{
//	    Routes:    routes,
//	    Observers: []nav.TransitionObserver{middleware.Prometheus()},
//	})
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) nav.TransitionObserver {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Initialize metrics once
	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return &metricsObserver{m: m}
}

// metricsObserver implements nav.TransitionObserver over a metrics set.
type metricsObserver struct {
	m *metrics
}

func (o *metricsObserver) ObserveTransition(ctx context.Context, to routepath.Location) nav.TransitionEnd {
	path := to.Pathname
	if path == "" {
		path = "/"
	}
	start := time.Now()

	return func(outcome nav.Outcome, err error) {
		o.m.navigationDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
		o.m.navigationsTotal.WithLabelValues(path, string(outcome)).Inc()

		if outcome == nav.OutcomeRedirected {
			o.m.redirectsTotal.Inc()
		}
		if err != nil && outcome == nav.OutcomeFailed {
			o.m.navigationErrors.WithLabelValues(path, categorizeError(err)).Inc()
		}
	}
}

// categorizeError maps a transition error to a bounded label set.
// This prevents high-cardinality labels from error messages.
func categorizeError(err error) string {
	var (
		loaderErr *nav.LoaderError
		chunkErr  *nav.ChunkError
		hookErr   *nav.HookError
		schemaErr *router.SchemaError
	)
	switch {
	case errors.Is(err, nav.ErrTooManyRedirects):
		return "redirect_loop"
	case errors.As(err, &schemaErr):
		return "validation"
	case errors.As(err, &loaderErr):
		return "loader"
	case errors.As(err, &chunkErr):
		return "chunk"
	case errors.As(err, &hookErr):
		return "hook"
	default:
		return "internal"
	}
}

// =============================================================================
// Metrics Recording Functions
// =============================================================================

// RecordPreloadHit records a navigation that consumed a warm preload entry.
// Call this from host integration code around Engine.Navigate.
func RecordPreloadHit() {
	if globalMetrics != nil {
		globalMetrics.preloadHits.Inc()
	}
}

// RecordPreloadMiss records a navigation that fell back to a direct load.
func RecordPreloadMiss() {
	if globalMetrics != nil {
		globalMetrics.preloadMisses.Inc()
	}
}

// RecordPreloadEviction records a preload entry aborted by eviction,
// invalidation, or Clear.
func RecordPreloadEviction() {
	if globalMetrics != nil {
		globalMetrics.preloadEvictions.Inc()
	}
}

// RecordPreloadSize records the current preload cache size.
// Call with Engine.CacheLen after cache-mutating operations.
func RecordPreloadSize(n int) {
	if globalMetrics != nil {
		globalMetrics.preloadEntries.Set(float64(n))
	}
}

// =============================================================================
// Metrics Collector
// =============================================================================

// Collector exposes the metrics for use in custom registrations.
// This allows collecting wayfind metrics alongside other application metrics.
type Collector struct {
	navigationsTotal   *prometheus.CounterVec
	navigationDuration *prometheus.HistogramVec
	navigationErrors   *prometheus.CounterVec
	redirectsTotal     prometheus.Counter
	preloadHits        prometheus.Counter
	preloadMisses      prometheus.Counter
	preloadEvictions   prometheus.Counter
	preloadEntries     prometheus.Gauge
}

// GetMetrics returns the global metrics collector.
// Returns nil if the Prometheus observer has not been initialized.
func GetMetrics() *Collector {
	if globalMetrics == nil {
		return nil
	}
	return &Collector{
		navigationsTotal:   globalMetrics.navigationsTotal,
		navigationDuration: globalMetrics.navigationDuration,
		navigationErrors:   globalMetrics.navigationErrors,
		redirectsTotal:     globalMetrics.redirectsTotal,
		preloadHits:        globalMetrics.preloadHits,
		preloadMisses:      globalMetrics.preloadMisses,
		preloadEvictions:   globalMetrics.preloadEvictions,
		preloadEntries:     globalMetrics.preloadEntries,
	}
}
