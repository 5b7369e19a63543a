package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileDocument stores the document in one file on disk.
type FileDocument struct {
	path string
	perm os.FileMode
}

func NewFileDocument(path string) *FileDocument {
	return &FileDocument{path: path, perm: 0o644}
}

func (d *FileDocument) Name() string { return "file" }

// Path is the file the document lives in.
func (d *FileDocument) Path() string { return d.path }

func (d *FileDocument) Read(_ context.Context) ([]byte, error) {
	b, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("docstore/file: read %s: %w", d.path, err)
	}
	return b, nil
}

// Write replaces the file atomically: readers see either the old or the
// new contents, never a truncated mix.
func (d *FileDocument) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("docstore/file: mkdir %s: %w", dir, err)
	}
	if err := atomicWriteFile(dir, ".docstore-*.tmp", d.path, data, d.perm); err != nil {
		return fmt.Errorf("docstore/file: write %s: %w", d.path, err)
	}
	return nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
