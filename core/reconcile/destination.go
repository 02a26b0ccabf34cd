package reconcile

import (
	"context"
	"io"

	"dirsync/core/client"
	"dirsync/core/models"
)

// Destination is where mirrored files are written.
type Destination interface {
	// Scope names the place the destination writes to, such as
	// file:///srv/mirror. Metadata cache entries are kept per scope.
	Scope() string
	// Stat returns the state of the copy at path, or nil when there is none.
	Stat(ctx context.Context, path string) (*models.FileState, error)
	// Remove deletes the copy at path. A missing copy is not an error.
	Remove(ctx context.Context, path string) error
	// Write replaces the copy at path with the content of r, stamped with
	// state. On failure no partial copy is left behind.
	Write(ctx context.Context, path string, r io.Reader, state models.FileState) error
}

// Fetcher reads listings and file content from the catalog server.
type Fetcher interface {
	ListFiles(ctx context.Context, prefix string, update bool) ([]models.FileRecord, error)
	Fetch(ctx context.Context, path string, offset int64, opts ...client.FetchOption) (*client.Transfer, error)
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// ContextReader returns a reader that fails once ctx is done.
func ContextReader(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
