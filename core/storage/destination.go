package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"dirsync/core/models"
	"dirsync/core/reconcile"

	"github.com/minio/minio-go/v7"
)

// MetaModTime is the user metadata key holding the source mtime in unix
// seconds.
const MetaModTime = "mtime"

// BucketDestination mirrors files into an object storage bucket.
type BucketDestination struct {
	client   Client
	endpoint string
	bucket string
	prefix string
	region string
}

// NewBucketDestination creates a destination writing to bucket under prefix.
func NewBucketDestination(client Client, cfg Config) *BucketDestination {
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")
	return &BucketDestination{
		client:   client,
		endpoint: strings.TrimRight(endpoint, "/"),
		bucket:   cfg.Bucket,
		prefix:   strings.Trim(cfg.Prefix, "/"),
		region:   cfg.Region,
	}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (d *BucketDestination) EnsureBucket(ctx context.Context) error {
	exists, err := d.client.BucketExists(ctx, d.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", d.bucket, err)
	}
	if exists {
		return nil
	}
	if err := d.client.MakeBucket(ctx, d.bucket, minio.MakeBucketOptions{Region: d.region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", d.bucket, err)
	}
	return nil
}

// Scope implements reconcile.Destination, e.g. s3://host:9000/mirror/backup.
func (d *BucketDestination) Scope() string {
	return "s3://" + path.Join(d.endpoint, d.bucket, d.prefix)
}

func (d *BucketDestination) key(p string) (string, error) {
	if !reconcile.IsSafePath(p) {
		return "", fmt.Errorf("%w: %q", reconcile.ErrUnsafePath, p)
	}
	return path.Join(d.prefix, p), nil
}

// Stat implements reconcile.Destination.
func (d *BucketDestination) Stat(ctx context.Context, p string) (*models.FileState, error) {
	key, err := d.key(p)
	if err != nil {
		return nil, err
	}
	info, err := d.client.StatObject(ctx, d.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &models.FileState{Size: uint64(info.Size), ModifiedAt: modTime(info)}, nil
}

// Remove implements reconcile.Destination.
func (d *BucketDestination) Remove(ctx context.Context, p string) error {
	key, err := d.key(p)
	if err != nil {
		return err
	}
	if err := d.client.RemoveObject(ctx, d.bucket, key, minio.RemoveObjectOptions{}); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// Write implements reconcile.Destination. An object only appears once the
// upload completed, so a failed upload leaves nothing behind.
func (d *BucketDestination) Write(ctx context.Context, p string, r io.Reader, state models.FileState) error {
	key, err := d.key(p)
	if err != nil {
		return err
	}
	info, err := d.client.PutObject(ctx, d.bucket, key, reconcile.ContextReader(ctx, r), int64(state.Size), minio.PutObjectOptions{
		ContentType:  "application/octet-stream",
		UserMetadata: map[string]string{MetaModTime: strconv.FormatInt(state.ModifiedAt, 10)},
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	if uint64(info.Size) != state.Size {
		_ = d.client.RemoveObject(ctx, d.bucket, key, minio.RemoveObjectOptions{})
		return fmt.Errorf("upload %s: stored %d bytes, want %d", key, info.Size, state.Size)
	}
	return nil
}

// modTime prefers the mtime metadata written by Write and falls back to the
// object's LastModified.
func modTime(info minio.ObjectInfo) int64 {
	for k, v := range info.UserMetadata {
		if strings.EqualFold(k, MetaModTime) {
			if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
				return ts
			}
		}
	}
	return info.LastModified.Unix()
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	default:
		return false
	}
}

var _ reconcile.Destination = (*BucketDestination)(nil)
