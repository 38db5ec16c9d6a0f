package registry

import "fmt"

// The error taxonomy every operation reports through. The HTTP layer maps
// these to status codes: ValidationError 400, AuthError 401, NotFoundError
// 404, UpstreamError 500.

// ValidationError marks malformed or missing required input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AuthError marks a missing or invalid organization context.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// errUnauthorized is the uniform failure for requests without an
// organization context.
func errUnauthorized() error {
	return &AuthError{Message: "Unauthorized"}
}

// NotFoundError marks an entity that is absent, expired, or hidden because it
// belongs to another organization. Callers cannot distinguish those cases.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func notFoundf(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// UpstreamError marks a failure in the data store, object storage, or token
// service. Message is safe to show; Err carries the cause for server-side
// logs only.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string { return e.Message }

func (e *UpstreamError) Unwrap() error { return e.Err }

func upstream(message string, err error) error {
	return &UpstreamError{Message: message, Err: err}
}
