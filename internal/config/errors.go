package config

import "errors"

var (
	// ErrParse indicates the environment could not be parsed.
	ErrParse = errors.New("config: parse failed")

	// ErrMissing indicates a required setting is empty.
	ErrMissing = errors.New("config: missing required setting")

	// ErrInvalid indicates a setting has an unsupported value.
	ErrInvalid = errors.New("config: invalid setting")
)
