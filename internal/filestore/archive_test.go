package filestore

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlprobe/sqlprobe/internal/errs"
)

type fakeStore struct {
	buckets map[string]bool
	puts    map[string]string

	ensureErr error
	putErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{buckets: map[string]bool{}, puts: map[string]string{}}
}

func (f *fakeStore) Ping(context.Context) error { return nil }
func (f *fakeStore) Close() error               { return nil }

func (f *fakeStore) EnsureBucket(_ context.Context, bucket string) error {
	if f.ensureErr != nil {
		return f.ensureErr
	}
	f.buckets[bucket] = true
	return nil
}

func (f *fakeStore) PutObject(_ context.Context, bucket, key string, r io.Reader, size int64, contentType string) (*ObjectInfo, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.puts[key] = string(body)
	return &ObjectInfo{Key: key, Size: size, ContentType: contentType}, nil
}

func (f *fakeStore) PresignGetURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	if _, ok := f.puts[key]; !ok {
		return "", errs.New(errs.ErrKindNotFound, "no such object")
	}
	return "https://" + bucket + ".example.test/" + key, nil
}

func TestArchiveUploadsUnderDatePartitionedKey(t *testing.T) {
	store := newFakeStore()
	a := NewArchiver(store, "sqlprobe-reports")
	a.now = func() time.Time {
		return time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)
	}

	key, err := a.Archive(context.Background(), "FAILED\tdbo.usp_broken\tline 1: boom\n")
	require.NoError(t, err)

	assert.Regexp(t, `^reports/2026/08/31/sqlprobe-143000-[0-9a-f]{8}\.txt$`, key)
	assert.True(t, store.buckets["sqlprobe-reports"])
	assert.Equal(t, "FAILED\tdbo.usp_broken\tline 1: boom\n", store.puts[key])
}

func TestArchiveKeysAreUniquePerUpload(t *testing.T) {
	store := newFakeStore()
	a := NewArchiver(store, "sqlprobe-reports")

	k1, err := a.Archive(context.Background(), "run one\n")
	require.NoError(t, err)
	k2, err := a.Archive(context.Background(), "run two\n")
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}

func TestShareLinkPointsAtArchivedReport(t *testing.T) {
	store := newFakeStore()
	a := NewArchiver(store, "sqlprobe-reports")

	key, err := a.Archive(context.Background(), "0 objects processed, 0 invalid\n")
	require.NoError(t, err)

	url, err := a.ShareLink(context.Background(), key, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "https://sqlprobe-reports.example.test/"+key, url)

	_, err = a.ShareLink(context.Background(), "reports/missing.txt", time.Hour)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestArchiveRejectsEmptyReport(t *testing.T) {
	a := NewArchiver(newFakeStore(), "sqlprobe-reports")

	_, err := a.Archive(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestArchivePropagatesStoreErrors(t *testing.T) {
	store := newFakeStore()
	store.ensureErr = errs.New(errs.ErrKindPermissionDenied, "access denied")
	a := NewArchiver(store, "sqlprobe-reports")

	_, err := a.Archive(context.Background(), "content")
	require.Error(t, err)
	assert.True(t, errs.IsPermissionDenied(err))
	assert.Empty(t, store.puts)
}
