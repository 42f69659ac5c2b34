package docsource

import (
	"context"
	"fmt"

	"github.com/lunalabs/intakeflow/internal/blob"
	"github.com/lunalabs/intakeflow/internal/domain"
)

// BlobSource fetches document bytes from a bucket in the blob store, keyed by
// the file handle.
type BlobSource struct {
	store  blob.Store
	bucket string
}

// NewBlobSource creates a BlobSource reading from the given bucket.
func NewBlobSource(store blob.Store, bucket string) *BlobSource {
	return &BlobSource{store: store, bucket: bucket}
}

// FetchBytes returns the object stored under id.
func (s *BlobSource) FetchBytes(ctx context.Context, id string) ([]byte, error) {
	data, err := s.store.Get(ctx, s.bucket, id)
	if err != nil {
		return nil, fmt.Errorf("blob fetch %q: %v: %w", id, err, domain.ErrFetchFailed)
	}
	return data, nil
}
