package types

import "errors"

// Error taxonomy shared by handlers and the domain core. Handlers map these
// onto HTTP statuses; everything else wraps them with context.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrDependencyFailure = errors.New("dependency failure")
)
