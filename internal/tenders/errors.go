package tenders

import "errors"

// ErrNotFound means no tender exists for the given id.
var ErrNotFound = errors.New("tender not found")
