package certificate

import "errors"

var (
	// ErrInvalidIdentifier indicates the identifier cannot be used as a file name.
	ErrInvalidIdentifier = errors.New("certificate: invalid identifier")

	// ErrRenderFailed indicates the PDF document could not be produced.
	ErrRenderFailed = errors.New("certificate: render failed")

	// ErrUnsupportedText indicates printed text has characters the PDF core fonts cannot draw.
	ErrUnsupportedText = errors.New("certificate: unsupported characters")

	// ErrWriteFailed indicates the artifact could not be written to disk.
	ErrWriteFailed = errors.New("certificate: write failed")
)
