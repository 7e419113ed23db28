package services

import "errors"

// Error taxonomy for order operations. Handlers map these to HTTP status
// codes with errors.Is; every wrapped error carries a human-readable reason.
//
// ErrValidation, ErrForbidden and ErrNotFound are terminal for the caller.
// ErrServiceUnavailable is retryable once the dependency recovers.
// ErrPersistence means the final commit failed after remote side effects had
// already occurred; inventory reserved before the failure is not rolled back
// on this path.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrServiceUnavailable = errors.New("dependent service unavailable")
	ErrPersistence        = errors.New("persistence failed")
)
