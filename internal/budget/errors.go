package budget

import "errors"

var (
	// ErrExceeded indicates an authorization was denied against the monthly limit.
	ErrExceeded = errors.New("budget exceeded")
	// ErrInvalidLimit indicates a non-positive budget limit.
	ErrInvalidLimit = errors.New("budget limit must be positive")
)
