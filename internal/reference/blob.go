package reference

import (
	"context"
	"fmt"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// BlobSource reads documents from a gocloud bucket, stored as
// <prefix><key>.json
type BlobSource struct {
	bucket *blob.Bucket
	prefix string
}

// OpenBlobSource opens the bucket at bucketURL (file://, mem://, s3://)
func OpenBlobSource(
	ctx context.Context, bucketURL, prefix string,
) (*BlobSource, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return NewBlobSource(bucket, prefix), nil
}

// NewBlobSource wraps an open bucket
func NewBlobSource(bucket *blob.Bucket, prefix string) *BlobSource {
	return &BlobSource{bucket: bucket, prefix: prefix}
}

func (s *BlobSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, s.keyFor(key))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, err
	}
	return data, nil
}

// Put writes a document, mainly for seeding local buckets
func (s *BlobSource) Put(ctx context.Context, key string, data []byte) error {
	return s.bucket.WriteAll(ctx, s.keyFor(key), data, nil)
}

func (s *BlobSource) Close() error {
	return s.bucket.Close()
}

func (s *BlobSource) keyFor(key string) string {
	return s.prefix + key + ".json"
}
