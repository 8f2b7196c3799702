// Package blobstore stores the raw bytes of uploaded files, one blob per
// file id. Writes are all-or-nothing: a failed or short Put leaves no blob
// under the key.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/filestorage/internal/common"
)

// ErrInvalidKey is returned for keys that are empty or contain a path separator.
var ErrInvalidKey = errors.New("invalid blob key")

// Info describes a stored blob.
type Info struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Store is a flat key/blob namespace.
type Store interface {
	// Put streams r under key. It fails with common.ErrSizeMismatch when r
	// does not yield exactly size bytes, in which case nothing is stored.
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	// Open returns the blob contents; common.ErrNotFound when absent.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob; common.ErrNotFound when absent.
	Delete(ctx context.Context, key string) error
	// List reports every stored blob, including leftovers of interrupted writes.
	List(ctx context.Context) ([]Info, error)
}

// sizedReader reads from r in chunks of at most chunk bytes and turns a
// length other than size into common.ErrSizeMismatch. It also stops when
// ctx is done.
type sizedReader struct {
	ctx   context.Context
	r     io.Reader
	size  int64
	chunk int
	read  int64
}

func newSizedReader(ctx context.Context, r io.Reader, size int64, chunk int) *sizedReader {
	return &sizedReader{ctx: ctx, r: r, size: size, chunk: chunk}
}

func (s *sizedReader) Read(p []byte) (int, error) {
	if err := s.ctx.Err(); err != nil {
		return 0, err
	}
	if s.chunk > 0 && len(p) > s.chunk {
		p = p[:s.chunk]
	}

	n, err := s.r.Read(p)
	s.read += int64(n)

	if s.read > s.size {
		return n, fmt.Errorf("%w: more than %d bytes", common.ErrSizeMismatch, s.size)
	}
	if errors.Is(err, io.EOF) && s.read != s.size {
		return n, fmt.Errorf("%w: expected %d bytes, got %d", common.ErrSizeMismatch, s.size, s.read)
	}
	return n, err
}

// copyChunked copies src to dst one chunk at a time.
func copyChunked(dst io.Writer, src io.Reader, chunk int) (int64, error) {
	buf := make([]byte, chunk)
	var written int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr != nil {
				return written, werr
			}
			if w != n {
				return written, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
