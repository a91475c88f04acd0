package dispatch

import "errors"

// ErrConnectionFailed indicates the mail provider could not be reached.
var ErrConnectionFailed = errors.New("dispatch: connection check failed")
