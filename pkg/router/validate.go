package router

import (
	"fmt"
	"net/url"
)

// SchemaError reports a params/query schema violation for one route.
type SchemaError struct {
	// Pattern is the violating route's full path pattern.
	Pattern string

	// Err is the underlying validation failure.
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("validation failed for %s: %v", e.Pattern, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ValidateStack validates every matched route's schema sequentially, root to
// leaf, failing fast on the first violation. A stack only loads data if the
// whole stack validates.
func ValidateStack(stack []RouteMatch, query url.Values) error {
	for _, rm := range stack {
		if rm.Route.Schema == nil {
			continue
		}
		if err := rm.Route.Schema.Validate(rm.Params, query); err != nil {
			return &SchemaError{Pattern: rm.Compiled.FullPath, Err: err}
		}
	}
	return nil
}
