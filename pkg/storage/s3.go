package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const defaultContentType = "application/octet-stream"

// S3Storage implements Storage on S3-compatible object storage.
type S3Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	cfg       Config
}

// New creates an S3Storage.
func New(cfg Config) (*S3Storage, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := s3.New(s3.Options{}, func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		}
	})

	return &S3Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		cfg:       cfg,
	}, nil
}

// Bucket returns the configured bucket name.
func (s *S3Storage) Bucket() string {
	return s.cfg.Bucket
}

// Put uploads size bytes from r to key.
func (s *S3Storage) Put(ctx context.Context, key string, r io.Reader, size int64, opts ...Option) (*FileInfo, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	o := &putOptions{contentType: defaultContentType, acl: ACLPrivate}
	for _, opt := range opts {
		opt(o)
	}

	acl := types.ObjectCannedACLPrivate
	if o.acl == ACLPublicRead {
		acl = types.ObjectCannedACLPublicRead
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(o.contentType),
		ACL:           acl,
		Metadata:      o.metadata,
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrUploadFailed)
	}

	return &FileInfo{
		Key:         key,
		ContentType: o.contentType,
		ACL:         o.acl,
		Size:        size,
	}, nil
}

// URL returns a presigned GET URL for key, or a public one with WithPublic.
func (s *S3Storage) URL(ctx context.Context, key string, opts ...URLOption) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}

	o := &urlOptions{expiry: DefaultURLExpiry}
	for _, opt := range opts {
		opt(o)
	}

	if o.public {
		return s.publicURL(key), nil
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}
	if o.downloadName != "" {
		input.ResponseContentDisposition = aws.String(fmt.Sprintf("attachment; filename=%q", o.downloadName))
	}

	req, err := s.presigner.PresignGetObject(ctx, input, s3.WithPresignExpires(o.expiry))
	if err != nil {
		return "", wrapS3Error(err, ErrPresignFailed)
	}
	return req.URL, nil
}

// Ping issues HeadBucket.
func (s *S3Storage) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.Bucket)})
	if err != nil {
		return wrapS3Error(err, ErrUnavailable)
	}
	return nil
}

func (s *S3Storage) publicURL(key string) string {
	if s.cfg.PublicURL != "" {
		return strings.TrimSuffix(s.cfg.PublicURL, "/") + "/" + key
	}
	if s.cfg.Endpoint != "" {
		endpoint := strings.TrimSuffix(s.cfg.Endpoint, "/")
		if s.cfg.PathStyle {
			return endpoint + "/" + s.cfg.Bucket + "/" + key
		}
		return endpoint + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

// ValidateKey rejects empty keys, absolute keys and keys with dot segments.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for seg := range strings.SplitSeq(key, "/") {
		if seg == ".." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}

// JoinKey joins non-empty segments with "/", trimming surrounding slashes.
func JoinKey(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg = strings.Trim(seg, "/"); seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "/")
}

var _ Storage = (*S3Storage)(nil)
