package clients

import "errors"

// Sentinel errors for remote calls. Callers distinguish a dependency being
// unreachable (retryable) from a record being absent or stock being short
// (not retryable without change) via errors.Is.
var (
	ErrUnavailable       = errors.New("service unavailable")
	ErrSKUNotFound       = errors.New("sku not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)
