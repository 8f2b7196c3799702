package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/filestorage/internal/common"
	"github.com/spf13/afero"
)

const tempPrefix = ".tmp-"

// FileSystemStore keeps blobs as files directly under a root directory:
//
//	<root>/
//	  <file id>      (committed blobs)
//	  .tmp-*         (writes in progress)
type FileSystemStore struct {
	fs        afero.Fs
	root      string
	chunkSize int
}

// NewFileSystemStore creates root on fsys if needed.
func NewFileSystemStore(fsys afero.Fs, root string, chunkSize int) (*FileSystemStore, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if err := fsys.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &FileSystemStore{fs: fsys, root: root, chunkSize: chunkSize}, nil
}

func (s *FileSystemStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.root, key), nil
}

// Put writes to a temp file in root and renames it over key once the
// expected number of bytes has been written and flushed.
func (s *FileSystemStore) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	destPath, err := s.path(key)
	if err != nil {
		return err
	}

	tmpFile, err := afero.TempFile(s.fs, s.root, tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = s.fs.Remove(tmpPath)
		}
	}()

	if _, err := copyChunked(tmpFile, newSizedReader(ctx, r, size, s.chunkSize), s.chunkSize); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := s.fs.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

func (s *FileSystemStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

func (s *FileSystemStore) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return common.ErrNotFound
		}
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

func (s *FileSystemStore) List(ctx context.Context) ([]Info, error) {
	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}

	result := make([]Info, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		result = append(result, Info{Key: e.Name(), Size: e.Size(), ModTime: e.ModTime()})
	}
	return result, nil
}

var _ Store = (*FileSystemStore)(nil)
