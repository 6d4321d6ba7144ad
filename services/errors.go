package services

import "errors"

// Error taxonomy for the chat core. Handlers map these to HTTP statuses;
// everything else surfaces as an internal error.
var (
	// ErrValidation - malformed or missing caller input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound - referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPermission - authenticated but not authorized for this resource.
	ErrPermission = errors.New("permission denied")
	// ErrInvariant - internal data-model assumption violated, e.g. a
	// conversation without a second participant.
	ErrInvariant = errors.New("invariant violation")
	// ErrRateLimited - too many OTP requests or verification attempts.
	ErrRateLimited = errors.New("rate limited")
)
