package repositories

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"

	"github.com/checkmarble/form-designer/models"
)

// BlobKeyValueStore keeps one json object per key in a bucket. "file:///path" persists on disk for single
// instance deployments, "gs://", "s3://" and "azblob://" buckets are shared between instances, "mem://" is used
// in tests.
type BlobKeyValueStore struct {
	bucket *blob.Bucket
}

func NewBlobKeyValueStore(ctx context.Context, bucketUrl string) (*BlobKeyValueStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketUrl)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open bucket %s", bucketUrl)
	}
	return &BlobKeyValueStore{bucket: bucket}, nil
}

func objectName(key string) string {
	return strings.ReplaceAll(key, ":", "/") + ".json"
}

func (s *BlobKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, objectName(key))
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, errors.Wrapf(models.NotFoundError, "key %s", key)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not read key %s", key)
	}
	return data, nil
}

func (s *BlobKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	err := s.bucket.WriteAll(ctx, objectName(key), value, &blob.WriterOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return errors.Wrapf(err, "could not write key %s", key)
	}
	return nil
}

func (s *BlobKeyValueStore) Remove(ctx context.Context, key string) error {
	err := s.bucket.Delete(ctx, objectName(key))
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return errors.Wrapf(err, "could not delete key %s", key)
	}
	return nil
}

func (s *BlobKeyValueStore) Close() error {
	return s.bucket.Close()
}
