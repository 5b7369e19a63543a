// Package docstore persists a single opaque document, read and replaced
// wholesale. The item repository keeps its JSON array in one of these.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when the document was never written.
var ErrNotFound = errors.New("docstore: document not found")

// Document is one named blob of bytes with whole-value read/replace.
type Document interface {
	// Name identifies the backend ("file", "redis") for logs and metrics.
	Name() string
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}
