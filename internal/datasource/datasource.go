// Package datasource defines where the tools read their input from.
package datasource

import (
	"context"
	"io"
)

// Source yields the bytes of one input. Name is what gets recorded in
// generated headers (for a local file, the path as given).
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}
