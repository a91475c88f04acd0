package logger

import "errors"

var (
	// ErrInvalidLevel indicates an unknown log level name.
	ErrInvalidLevel = errors.New("logger: invalid level")

	// ErrInvalidFormat indicates an unknown output format.
	ErrInvalidFormat = errors.New("logger: invalid format")

	// ErrLogFile indicates the log file could not be opened.
	ErrLogFile = errors.New("logger: cannot open log file")
)
