// Package datasource abstracts where pipeline tables are read from and
// written to.
package datasource

import (
	"context"
	"io"
)

// Source opens an input for reading.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Sink creates an output for writing. Closing the returned writer commits
// the content.
type Sink interface {
	Create(ctx context.Context) (io.WriteCloser, error)
}
