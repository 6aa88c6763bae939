package files

import (
	"context"
	"errors"
	"io"
)

var ErrBlobNotFound = errors.New("blob not found")

// Blob describes bytes written by a BlobStore.
type Blob struct {
	Size   int64
	Sha256 string
}

// BlobStore keeps file bytes under opaque slash separated keys.
type BlobStore interface {
	// Put writes r under key, replacing any previous content, and reports
	// the byte count and hex sha256 of what was written.
	Put(ctx context.Context, key string, r io.Reader) (Blob, error)
	// Open reports ErrBlobNotFound for a missing key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete of a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
