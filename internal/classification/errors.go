package classification

import "errors"

var (
	// ErrNotFound means the upstream source does not know the tender id.
	ErrNotFound = errors.New("tender not found")
	// ErrUpstreamUnavailable means the upstream fetch failed transiently.
	ErrUpstreamUnavailable = errors.New("classification upstream unavailable")
)
