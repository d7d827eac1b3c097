// Package file implements local filesystem sources and sinks.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local is a file on the local disk, usable as both a source and a sink.
type Local struct{ path string }

// NewLocal returns a Local bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the bound path.
func (l *Local) Path() string { return l.path }

// Open opens the file for reading. A context that is already done returns
// its error without touching the filesystem. Filesystem errors are wrapped
// with the path and still match errors.Is(err, os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Create creates parent directories and returns a writer to a temporary file
// next to the target. Close renames it over the target, so readers never see
// a partial file.
func (l *Local) Create(ctx context.Context) (io.WriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(l.path)+".*")
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", l.path, err)
	}
	return &atomicFile{File: f, target: l.path}, nil
}

type atomicFile struct {
	*os.File
	target string
}

func (a *atomicFile) Close() error {
	tmp := a.File.Name()
	if err := a.File.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", a.target, err)
	}
	if err := os.Rename(tmp, a.target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", a.target, err)
	}
	return nil
}
