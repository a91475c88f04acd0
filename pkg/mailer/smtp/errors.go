package smtp

import "errors"

var (
	// ErrInvalidConfig indicates the sender settings are incomplete or contradictory.
	ErrInvalidConfig = errors.New("smtp: invalid config")

	// ErrInvalidMessage indicates the email could not be converted to a MIME message.
	ErrInvalidMessage = errors.New("smtp: invalid message")

	// ErrToken indicates an OAuth2 access token could not be obtained.
	ErrToken = errors.New("smtp: oauth2 token unavailable")
)
