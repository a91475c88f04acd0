package certificate

import "log/slog"

// Signatory is one of the two signature lines printed at the bottom of the certificate.
type Signatory struct {
	Name  string // Printed above the line; may be empty for a blank signing line
	Title string // Printed below the line as "{Title}, {Organization}"
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithSignatories overrides the default left and right signature lines.
func WithSignatories(left, right Signatory) Option {
	return func(r *Renderer) {
		r.signatories = [2]Signatory{left, right}
	}
}

// WithExtension overrides the artifact file extension (default "pdf").
// The leading dot is optional.
func WithExtension(ext string) Option {
	return func(r *Renderer) {
		if ext != "" {
			r.ext = ext
		}
	}
}
