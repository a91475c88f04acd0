package health

import "errors"

var (
	// ErrCheckFailed is returned when a required check fails.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout wraps check errors caused by the per-check deadline.
	ErrCheckTimeout = errors.New("health: check timeout")
)
