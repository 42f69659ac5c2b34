// Package blob abstracts the object-store collaborator.
package blob

import "context"

// Store lists and fetches objects from a bucketed blob store.
type Store interface {
	// List returns the object names in bucket.
	List(ctx context.Context, bucket string) ([]string, error)

	// Get returns the bytes of the named object.
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}
