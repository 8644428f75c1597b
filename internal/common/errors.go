package common

import "fmt"

// ValidationError marks input the caller can fix; handlers map it to 400
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

// NewValidationError creates a validation error with a formatted detail
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a missing resource; handlers map it to 404. A
// resource owned by another client is reported the same way so ownership
// probing reveals nothing.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// NewNotFoundError creates a not-found error for a resource
func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// AccessDeniedError marks an operation on a resource the caller can see
// exists but does not own; handlers map it to 403
type AccessDeniedError struct {
	Detail string
}

func (e *AccessDeniedError) Error() string {
	return e.Detail
}

// NewAccessDeniedError creates an access-denied error
func NewAccessDeniedError(detail string) error {
	return &AccessDeniedError{Detail: detail}
}

// UpstreamAuthError means the analysis provider rejected our credentials
// (key, billing, or project). The detail is for logs, never for clients.
type UpstreamAuthError struct {
	Detail string
}

func (e *UpstreamAuthError) Error() string {
	return e.Detail
}

// UpstreamError is any non-auth failure from the analysis provider
type UpstreamError struct {
	StatusCode int
	Detail     string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream error (status %d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("upstream error: %s", e.Detail)
}

// UpstreamProtocolError means the provider answered but the response did
// not carry usable content
type UpstreamProtocolError struct {
	Detail string
}

func (e *UpstreamProtocolError) Error() string {
	return e.Detail
}
