// Package storage uploads objects to S3-compatible storage and issues links to them.
//
// Keys are chosen by the caller and must be clean relative paths; use JoinKey
// to build them and ValidateKey to check untrusted input.
//
//	store, err := storage.New(storage.Config{
//		Bucket:    "certificates",
//		AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
//		SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
//		Endpoint:  "http://localhost:9000", // optional, MinIO and friends
//		PathStyle: true,
//	})
//
//	info, err := store.Put(ctx, storage.JoinKey("workshop", "R1.pdf"), f, size,
//		storage.WithContentType("application/pdf"),
//	)
//
//	link, err := store.URL(ctx, info.Key,
//		storage.WithExpiry(72*time.Hour),
//		storage.WithDownload("R1.pdf"),
//	)
//
// URL presigns a GET request by default; WithPublic returns the unsigned
// object URL, prefixed with Config.PublicURL when set. Presigned links live
// at most MaxURLExpiry.
//
// Errors wrap the package sentinels (ErrNotFound, ErrAccessDenied,
// ErrUploadFailed and so on); the underlying SDK error is kept in the message only.
package storage
