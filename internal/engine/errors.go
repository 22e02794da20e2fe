package engine

import (
	"fmt"

	"github.com/nais/konvergator/internal/resource"
)

// ValidationError signals malformed configuration or malformed rendered
// manifests. It is always raised before any cluster I/O and is never worth
// retrying.
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{message: fmt.Sprintf(format, args...)}
}

// PermissionError wraps an HTTP 403 from the cluster. The manager lacks the
// privileges needed for the operation; only an operator can fix that.
type PermissionError struct {
	Resource resource.Identity
	err      error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("applying %s: %v (the manager needs elevated cluster privileges; grant additional RBAC, the equivalent of deploying with --trust)", e.Resource.String(), e.err)
}

func (e *PermissionError) Unwrap() error {
	return e.err
}

// ConflictError wraps an HTTP 409 from a server-side apply: another field
// manager owns contested fields. Recoverable by retrying with force.
type ConflictError struct {
	Resource resource.Identity
	err      error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("applying %s: %v (fields are owned by another manager; retry with force to reacquire them)", e.Resource.String(), e.err)
}

func (e *ConflictError) Unwrap() error {
	return e.err
}
