package middleware

import (
	"context"
	"time"

	"github.com/wayfind-ui/wayfind/pkg/nav"
	"github.com/wayfind-ui/wayfind/pkg/routepath"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for wayfind applications.
const defaultTracerName = "wayfind"

// OTelConfig configures the OpenTelemetry transition observer.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "wayfind").
	TracerName string

	// IncludeQuery includes the raw query string in traces.
	// May contain sensitive information - disabled by default.
	IncludeQuery bool

	// Filter determines which transitions to trace.
	// Return true to trace the transition, false to skip.
	// If nil, all transitions are traced.
	Filter func(to routepath.Location) bool

	// AttributeExtractor extracts custom attributes from the target
	// location. Called for each traced transition.
	AttributeExtractor func(to routepath.Location) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry transition observer.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeQuery enables including the query string in traces.
func WithIncludeQuery(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeQuery = include
	}
}

// WithTransitionFilter sets a filter function for transitions.
func WithTransitionFilter(filter func(to routepath.Location) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(to routepath.Location) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// defaultOTelConfig returns the default OpenTelemetry configuration.
func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:   defaultTracerName,
		IncludeQuery: false,
		Filter:       nil,
	}
}

// OpenTelemetry creates a transition observer that traces every navigation.
//
// The observer:
//   - Creates a span per transition (redirect hops span separately)
//   - Records the settlement outcome as wayfind.outcome
//   - Records errors and sets span status for failed transitions
//
// Example:
//
//	engine, err := nav.NewEngine(nav.Config{
//	    Routes: routes,
//	    Observers: []nav.TransitionObserver{
//	        middleware.OpenTelemetry(
//	            middleware.WithTracerName("my-app"),
//	        ),
//	    },
//	})
//
// The tracer uses the global OpenTelemetry tracer provider. Configure it
// in your main() before starting the engine:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	    sdktrace.WithResource(resource.NewWithAttributes(
//	        semconv.SchemaURL,
//	        semconv.ServiceName("my-app"),
//	    )),
//	)
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) nav.TransitionObserver {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	// Resolve tracer from global provider
	config.tracer = otel.Tracer(config.TracerName)

	return &otelObserver{config: config}
}

// otelObserver implements nav.TransitionObserver with OpenTelemetry spans.
type otelObserver struct {
	config OTelConfig
}

func (o *otelObserver) ObserveTransition(ctx context.Context, to routepath.Location) nav.TransitionEnd {
	if o.config.Filter != nil && !o.config.Filter(to) {
		return func(nav.Outcome, error) {}
	}

	attrs := []attribute.KeyValue{
		attribute.String("wayfind.path", spanPath(to)),
	}
	if to.Hash != "" {
		attrs = append(attrs, attribute.String("wayfind.hash", to.Hash))
	}
	if o.config.IncludeQuery && to.Query != "" {
		attrs = append(attrs, attribute.String("wayfind.query", to.Query))
	}
	if o.config.AttributeExtractor != nil {
		attrs = append(attrs, o.config.AttributeExtractor(to)...)
	}

	_, span := o.config.tracer.Start(
		ctx,
		"wayfind.navigate "+spanPath(to),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(time.Now()),
	)

	return func(outcome nav.Outcome, err error) {
		span.SetAttributes(attribute.String("wayfind.outcome", string(outcome)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}

// spanPath normalizes an empty pathname for span naming.
func spanPath(to routepath.Location) string {
	if to.Pathname == "" {
		return "/"
	}
	return to.Pathname
}
