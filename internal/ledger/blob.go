package ledger

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"

	_ "gocloud.dev/blob/memblob" // mem:// driver
)

// BlobStore keeps the ledger as a single JSON object in a bucket.
type BlobStore struct {
	bucket *blob.Bucket
	key    string
}

// NewBlobStore stores the ledger under key in bucket. The caller keeps
// ownership of bucket unless it calls Close.
func NewBlobStore(bucket *blob.Bucket, key string) *BlobStore {
	if key == "" {
		key = DocumentName
	}
	return &BlobStore{bucket: bucket, key: key}
}

// OpenDir opens the ledger in a local output directory, creating it when
// needed. fileblob writes through a temp file and renames on close.
func OpenDir(dir string) (*BlobStore, error) {
	bucket, err := fileblob.OpenBucket(dir, &fileblob.Options{CreateDir: true})
	if err != nil {
		return nil, errors.Wrapf(err, "open ledger dir %s", dir)
	}
	return NewBlobStore(bucket, DocumentName), nil
}

// OpenURL opens the ledger in any registered bucket (file://, mem://).
func OpenURL(ctx context.Context, bucketURL string) (*BlobStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "open ledger bucket %s", bucketURL)
	}
	return NewBlobStore(bucket, DocumentName), nil
}

// Load reads the ledger. A missing document yields an empty ledger.
func (s *BlobStore) Load(ctx context.Context) (Ledger, error) {
	data, err := s.bucket.ReadAll(ctx, s.key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return Ledger{}, nil
		}
		return nil, errors.Wrapf(err, "read ledger %s", s.key)
	}

	l := Ledger{}
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrapf(err, "parse ledger %s", s.key)
	}
	for k, e := range l {
		e.Key = k
		l[k] = e
	}
	return l, nil
}

// Save writes the whole ledger in one object write.
func (s *BlobStore) Save(ctx context.Context, l Ledger) error {
	if l == nil {
		l = Ledger{}
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal ledger")
	}
	if err := s.bucket.WriteAll(ctx, s.key, data, &blob.WriterOptions{ContentType: "application/json"}); err != nil {
		return errors.Wrapf(err, "write ledger %s", s.key)
	}
	return nil
}

// Reset deletes the document. Resetting an absent ledger is not an error.
func (s *BlobStore) Reset(ctx context.Context) error {
	err := s.bucket.Delete(ctx, s.key)
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return errors.Wrapf(err, "delete ledger %s", s.key)
	}
	return nil
}

// Close releases the bucket.
func (s *BlobStore) Close() error {
	if s.bucket != nil {
		return s.bucket.Close()
	}
	return nil
}
