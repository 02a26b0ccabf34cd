// Package storage writes mirrored files to S3 compatible object storage.
//
// It wraps the MinIO Go client behind the Client interface, which keeps the
// operations used by the sync client mockable (see core/storage/mocks).
//
// # Bucket destination
//
// BucketDestination implements reconcile.Destination. Objects are keyed by
// the configured prefix joined with the catalog path. The source mtime is
// stored in the "mtime" user metadata so change detection survives uploads;
// objects without it fall back to LastModified.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	dest := storage.NewBucketDestination(client, cfg.Storage)
//	if err := dest.EnsureBucket(ctx); err != nil {
//	    return err
//	}
package storage
