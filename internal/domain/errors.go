package domain

import "errors"

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrGone         = errors.New("no longer available")

	// ErrIndexUnavailable marks a connection-level search index failure.
	// The search service recovers from it by falling back to the
	// relational substring match; it never reaches the HTTP layer.
	ErrIndexUnavailable = errors.New("search index unavailable")
)

// ConflictError carries the identifier of the resource that caused a
// uniqueness conflict, so handlers can point the caller at it.
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
