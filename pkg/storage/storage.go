package storage

import (
	"context"
	"io"
)

// Storage stores objects under caller-chosen keys.
type Storage interface {
	// Put uploads size bytes from r to key, replacing any existing object.
	Put(ctx context.Context, key string, r io.Reader, size int64, opts ...Option) (*FileInfo, error)

	// URL returns a link to the object: signed by default, or public with WithPublic.
	URL(ctx context.Context, key string, opts ...URLOption) (string, error)

	// Ping verifies the bucket is reachable with the configured credentials.
	Ping(ctx context.Context) error
}

// Config holds S3-compatible storage settings, parsed with caarlos0/env.
type Config struct {
	Bucket    string `env:"STORAGE_BUCKET"`
	AccessKey string `env:"STORAGE_ACCESS_KEY"`
	SecretKey string `env:"STORAGE_SECRET_KEY"`
	Endpoint  string `env:"STORAGE_ENDPOINT"` // MinIO or other S3-compatible services
	Region    string `env:"STORAGE_REGION" envDefault:"us-east-1"`
	PublicURL string `env:"STORAGE_PUBLIC_URL"` // CDN prefix for WithPublic links
	PathStyle bool   `env:"STORAGE_PATH_STYLE"`
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// FileInfo describes an uploaded object.
type FileInfo struct {
	Key         string
	ContentType string
	ACL         ACL
	Size        int64
}

// ACL is a canned access control level.
type ACL string

const (
	ACLPrivate    ACL = "private"
	ACLPublicRead ACL = "public-read"
)

// DefaultRegion is used when Config.Region is empty.
const DefaultRegion = "us-east-1"

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

func (c *Config) validate() error {
	switch {
	case c.Bucket == "":
		return ErrInvalidConfig
	case c.AccessKey == "", c.SecretKey == "":
		return ErrInvalidConfig
	}
	return nil
}
