package storage

import "time"

// URLOption configures URL generation.
type URLOption func(*urlOptions)

type urlOptions struct {
	downloadName string
	expiry       time.Duration
	public       bool
}

// DefaultURLExpiry is the lifetime of signed URLs.
const DefaultURLExpiry = 15 * time.Minute

// MaxURLExpiry is the longest lifetime SigV4 presigning accepts.
const MaxURLExpiry = 7 * 24 * time.Hour

// WithExpiry sets the signed URL lifetime, capped at MaxURLExpiry.
func WithExpiry(d time.Duration) URLOption {
	return func(o *urlOptions) {
		if d > 0 {
			o.expiry = min(d, MaxURLExpiry)
		}
	}
}

// WithDownload adds a Content-Disposition: attachment response header with filename.
func WithDownload(filename string) URLOption {
	return func(o *urlOptions) {
		o.downloadName = filename
	}
}

// WithPublic returns an unsigned URL. The object must be publicly readable.
func WithPublic() URLOption {
	return func(o *urlOptions) {
		o.public = true
	}
}
