package filestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sqlprobe/sqlprobe/internal/errs"
)

const reportContentType = "text/plain; charset=utf-8"

// Archiver uploads finished validation reports to a bucket, one object per
// pass. Keys are date-partitioned so a bucket browser groups runs by day.
type Archiver struct {
	store  Store
	bucket string
	now    func() time.Time
}

// NewArchiver creates an Archiver writing into bucket on store.
func NewArchiver(store Store, bucket string) *Archiver {
	return &Archiver{store: store, bucket: bucket, now: time.Now}
}

// Archive uploads the report text and returns the key it was stored under.
func (a *Archiver) Archive(ctx context.Context, report string) (string, error) {
	if report == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "refusing to archive an empty report")
	}

	if err := a.store.EnsureBucket(ctx, a.bucket); err != nil {
		return "", err
	}

	key := a.objectKey()
	r := strings.NewReader(report)
	if _, err := a.store.PutObject(ctx, a.bucket, key, r, int64(r.Len()), reportContentType); err != nil {
		return "", err
	}
	return key, nil
}

// ShareLink returns a time-limited download URL for an archived report, so
// the run log can point straight at the uploaded object.
func (a *Archiver) ShareLink(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return a.store.PresignGetURL(ctx, a.bucket, key, ttl)
}

// objectKey builds a unique date-partitioned key for one report.
// The uuid suffix keeps concurrent runs in the same second from colliding.
func (a *Archiver) objectKey() string {
	t := a.now().UTC()
	return fmt.Sprintf("reports/%s/sqlprobe-%s-%s.txt",
		t.Format("2006/01/02"),
		t.Format("150405"),
		uuid.NewString()[:8])
}
