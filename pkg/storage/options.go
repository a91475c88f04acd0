package storage

// Option configures Put.
type Option func(*putOptions)

type putOptions struct {
	contentType string
	acl         ACL
	metadata    map[string]string
}

// WithContentType sets the object content type. Defaults to application/octet-stream.
func WithContentType(ct string) Option {
	return func(o *putOptions) {
		o.contentType = ct
	}
}

// WithACL overrides the private default.
func WithACL(acl ACL) Option {
	return func(o *putOptions) {
		o.acl = acl
	}
}

// WithMetadata attaches user metadata (x-amz-meta-*) to the object.
func WithMetadata(md map[string]string) Option {
	return func(o *putOptions) {
		if o.metadata == nil {
			o.metadata = make(map[string]string, len(md))
		}
		for k, v := range md {
			o.metadata[k] = v
		}
	}
}
