package batch

import "errors"

var (
	// ErrConnectionFailed aborts a run whose mail gateway failed the preflight check.
	ErrConnectionFailed = errors.New("batch: mail connection check failed")

	// ErrRosterUnavailable aborts a run whose roster could not be read.
	ErrRosterUnavailable = errors.New("batch: roster unavailable")

	// ErrInterrupted is returned with the outcomes gathered before the run was canceled.
	ErrInterrupted = errors.New("batch: interrupted")
)
