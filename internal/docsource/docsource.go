// Package docsource abstracts the document-source collaborator that delivers
// raw document bytes for an opaque file handle.
package docsource

import "context"

// Source fetches the raw bytes of a source document.
type Source interface {
	// FetchBytes returns the document bytes for the given file handle.
	// Failures are wrapped in domain.ErrFetchFailed and are not retried here;
	// the caller decides whether another pass is worthwhile.
	FetchBytes(ctx context.Context, id string) ([]byte, error)
}
