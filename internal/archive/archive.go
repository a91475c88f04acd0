// Package archive mirrors rendered certificates to object storage and issues
// download links for them.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrymomot/certsend/pkg/logger"
	"github.com/dmitrymomot/certsend/pkg/storage"
)

// ErrArchiveFailed indicates an artifact could not be archived.
var ErrArchiveFailed = errors.New("archive: failed")

// Config holds archive settings, parsed with caarlos0/env.
type Config struct {
	Prefix  string        `env:"STORAGE_PREFIX" envDefault:"certificates"`
	LinkTTL time.Duration `env:"STORAGE_LINK_TTL" envDefault:"168h"`
}

// Archive uploads artifacts under {prefix}/{file name}.
type Archive struct {
	store  storage.Storage
	logger *slog.Logger
	cfg    Config
	public bool
}

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Archive) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithPublicLinks uploads artifacts as public-read and returns unsigned
// links built from the storage public URL. Links then never expire.
func WithPublicLinks() Option {
	return func(a *Archive) {
		a.public = true
	}
}

// New creates an Archive on top of store.
func New(store storage.Storage, cfg Config, opts ...Option) *Archive {
	a := &Archive{
		store:  store,
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the object key for an artifact path.
func (a *Archive) Key(path string) string {
	return storage.JoinKey(a.cfg.Prefix, filepath.Base(path))
}

// Upload stores the artifact at path and returns its key and a download link.
// The link is empty when only the link could not be issued.
func (a *Archive) Upload(ctx context.Context, identifier, path string) (key, link string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrArchiveFailed, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrArchiveFailed, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	metadata := map[string]string{"identifier": identifier}
	if runID := logger.RunID(ctx); runID != "" {
		metadata["run-id"] = runID
	}

	putOpts := []storage.Option{
		storage.WithContentType(contentType),
		storage.WithMetadata(metadata),
	}
	urlOpts := []storage.URLOption{
		storage.WithExpiry(a.cfg.LinkTTL),
		storage.WithDownload(filepath.Base(path)),
	}
	if a.public {
		putOpts = append(putOpts, storage.WithACL(storage.ACLPublicRead))
		urlOpts = []storage.URLOption{storage.WithPublic()}
	}

	key = a.Key(path)
	if _, err := a.store.Put(ctx, key, f, info.Size(), putOpts...); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrArchiveFailed, err)
	}

	link, err = a.store.URL(ctx, key, urlOpts...)
	if err != nil {
		a.logger.WarnContext(ctx, "archive link unavailable",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return key, "", nil
	}

	a.logger.DebugContext(ctx, "certificate archived",
		slog.String("identifier", identifier),
		slog.String("key", key),
	)
	return key, link, nil
}

// Check verifies the bucket is reachable.
func (a *Archive) Check(ctx context.Context) error {
	return a.store.Ping(ctx)
}
