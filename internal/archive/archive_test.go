package archive

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certsend/pkg/logger"
	"github.com/dmitrymomot/certsend/pkg/storage"
)

type mockStorage struct {
	mock.Mock
	uploaded []byte
}

func (m *mockStorage) Put(ctx context.Context, key string, r io.Reader, size int64, opts ...storage.Option) (*storage.FileInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.uploaded = data
	args := m.Called(ctx, key, size, len(opts))
	info, _ := args.Get(0).(*storage.FileInfo)
	return info, args.Error(1)
}

func (m *mockStorage) URL(ctx context.Context, key string, opts ...storage.URLOption) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockStorage) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func writeArtifact(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "R1.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.3"), 0o644))
	return path
}

func TestArchive_Upload(t *testing.T) {
	t.Parallel()

	cfg := Config{Prefix: "certificates/go-workshop", LinkTTL: time.Hour}

	t.Run("uploads and links", func(t *testing.T) {
		t.Parallel()
		store := &mockStorage{}
		store.On("Put", mock.Anything, "certificates/go-workshop/R1.pdf", int64(8), 2).
			Return(&storage.FileInfo{Key: "certificates/go-workshop/R1.pdf"}, nil)
		store.On("URL", mock.Anything, "certificates/go-workshop/R1.pdf").
			Return("https://s3.example.com/signed", nil)

		ctx := logger.WithRunID(context.Background(), "run-1")
		key, link, err := New(store, cfg).Upload(ctx, "R1", writeArtifact(t))
		require.NoError(t, err)
		require.Equal(t, "certificates/go-workshop/R1.pdf", key)
		require.Equal(t, "https://s3.example.com/signed", link)
		require.Equal(t, []byte("%PDF-1.3"), store.uploaded)
		store.AssertExpectations(t)
	})

	t.Run("upload failure", func(t *testing.T) {
		t.Parallel()
		store := &mockStorage{}
		store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, storage.ErrAccessDenied)

		_, _, err := New(store, cfg).Upload(context.Background(), "R1", writeArtifact(t))
		require.ErrorIs(t, err, ErrArchiveFailed)
		require.ErrorIs(t, err, storage.ErrAccessDenied)
		store.AssertNotCalled(t, "URL", mock.Anything, mock.Anything)
	})

	t.Run("link failure keeps the key", func(t *testing.T) {
		t.Parallel()
		store := &mockStorage{}
		store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(&storage.FileInfo{}, nil)
		store.On("URL", mock.Anything, mock.Anything).Return("", storage.ErrPresignFailed)

		key, link, err := New(store, cfg).Upload(context.Background(), "R1", writeArtifact(t))
		require.NoError(t, err)
		require.Equal(t, "certificates/go-workshop/R1.pdf", key)
		require.Empty(t, link)
	})

	t.Run("missing artifact", func(t *testing.T) {
		t.Parallel()
		store := &mockStorage{}

		_, _, err := New(store, cfg).Upload(context.Background(), "R1", filepath.Join(t.TempDir(), "R1.pdf"))
		require.ErrorIs(t, err, ErrArchiveFailed)
		store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestArchive_PublicLinks(t *testing.T) {
	t.Parallel()

	var acl, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		if r.Method == http.MethodPut {
			acl = r.Header.Get("X-Amz-Acl")
			path = r.URL.Path
		}
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := storage.New(storage.Config{
		Bucket:    "certs",
		AccessKey: "access",
		SecretKey: "secret",
		Endpoint:  srv.URL,
		PathStyle: true,
		PublicURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)

	a := New(store, Config{Prefix: "certificates", LinkTTL: time.Hour}, WithPublicLinks())
	key, link, err := a.Upload(context.Background(), "R1", writeArtifact(t))
	require.NoError(t, err)
	require.Equal(t, "certificates/R1.pdf", key)
	require.Equal(t, "https://cdn.example.com/certificates/R1.pdf", link)
	require.Equal(t, "public-read", acl)
	require.Equal(t, "/certs/certificates/R1.pdf", path)
}

func TestArchive_PrivateByDefault(t *testing.T) {
	t.Parallel()

	var acl string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		if r.Method == http.MethodPut {
			acl = r.Header.Get("X-Amz-Acl")
		}
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := storage.New(storage.Config{
		Bucket:    "certs",
		AccessKey: "access",
		SecretKey: "secret",
		Endpoint:  srv.URL,
		PathStyle: true,
		PublicURL: "https://cdn.example.com",
	})
	require.NoError(t, err)

	_, link, err := New(store, Config{Prefix: "certificates", LinkTTL: time.Hour}).
		Upload(context.Background(), "R1", writeArtifact(t))
	require.NoError(t, err)
	require.Equal(t, "private", acl)
	require.Contains(t, link, "X-Amz-Signature=")
	require.NotContains(t, link, "cdn.example.com")
}

func TestArchive_Key(t *testing.T) {
	t.Parallel()

	require.Equal(t, "R1.pdf", New(&mockStorage{}, Config{}).Key("/tmp/certs/R1.pdf"))
	require.Equal(t, "a/b/R1.pdf", New(&mockStorage{}, Config{Prefix: "/a/b/"}).Key("R1.pdf"))
}

func TestArchive_Check(t *testing.T) {
	t.Parallel()

	store := &mockStorage{}
	store.On("Ping", mock.Anything).Return(errors.New("no such bucket")).Once()
	require.Error(t, New(store, Config{}).Check(context.Background()))
}
