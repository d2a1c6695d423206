package resource

import "fmt"

// ResourceLoadError reports that an external resource (an environment map or a geometry asset)
// could not be fetched or decoded. It is not recoverable by the renderer; callers choose whether to
// continue without the resource or abort scene construction.
type ResourceLoadError struct {
	// Kind names the resource category, e.g. "environment" or "geometry".
	Kind string
	// URL is the source identifier that failed.
	URL string
	// Err is the underlying cause.
	Err error
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("failed to load %s %q: %v", e.Kind, e.URL, e.Err)
}

func (e *ResourceLoadError) Unwrap() error {
	return e.Err
}

// NewLoadError wraps err as a ResourceLoadError unless it already is one.
//
// Parameters:
//   - kind: the resource category
//   - url: the source identifier
//   - err: the underlying cause
//
// Returns:
//   - error: the wrapped error, or nil if err is nil
func NewLoadError(kind, url string, err error) error {
	if err == nil {
		return nil
	}
	if le, ok := err.(*ResourceLoadError); ok {
		return le
	}
	return &ResourceLoadError{Kind: kind, URL: url, Err: err}
}
