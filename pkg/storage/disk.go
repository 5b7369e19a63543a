// Package storage is the content store for uploaded payloads.
//
// Two drivers ship with clouddrive:
//   - "local" stores blobs under a directory on the server (default)
//   - "s3" stores blobs in any S3-compatible bucket (AWS, MinIO, R2)
//
// Boot once, then hand the selected disk to whoever writes blobs:
//
//	if err := storage.Connect(ctx); err != nil { ... }
//	disk, err := storage.Use(config.StorageDefault())
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidPath is returned for keys that would escape the disk root.
var ErrInvalidPath = errors.New("storage: invalid path")

// Disk is the driver interface every content backend implements.
type Disk interface {
	// Name identifies the driver ("local", "s3") in logs and metrics.
	Name() string

	// Put writes content to path, creating parents as needed.
	Put(ctx context.Context, path string, content []byte) error

	// PutStream writes everything read from r to path.
	PutStream(ctx context.Context, path string, r io.Reader) error

	// GetStream opens the blob at path. Caller closes it.
	GetStream(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether a blob exists at path.
	Exists(ctx context.Context, path string) bool

	// Delete removes a blob. Missing blobs are not an error.
	Delete(ctx context.Context, path string) error
}
