package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/filestorage/internal/common"
	"github.com/dmitrijs2005/filestorage/internal/dbx"
	"github.com/dmitrijs2005/filestorage/internal/logging"
	"github.com/dmitrijs2005/filestorage/internal/server/blobstore"
	"github.com/dmitrijs2005/filestorage/internal/server/models"
	"github.com/dmitrijs2005/filestorage/internal/server/repositories"
	"github.com/dmitrijs2005/filestorage/internal/server/repositories/repomanager"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// sniffLen is how much of a blob is read to detect its content type.
const sniffLen = 3072

// UploadRequest describes one upload. Size is the length reported by the
// client; Body must yield exactly that many bytes.
type UploadRequest struct {
	Name    string
	Path    string
	Size    int64
	OwnerID int64
	Body    io.Reader
}

// Download is an opened file. The caller must close Body.
type Download struct {
	File        *models.File
	ContentType string
	Body        io.ReadCloser
}

type FileService struct {
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	logger      logging.Logger
}

func NewFileService(m repomanager.RepositoryManager, blobs blobstore.Store, logger logging.Logger) *FileService {
	return &FileService{repomanager: m, blobs: blobs, logger: logger}
}

// Upload creates the file row and stores its blob in one transaction. The
// row commits only after the blob is fully written; a failed commit removes
// the blob again. A taken path yields common.ErrAlreadyExists before any
// byte is written.
func (s *FileService) Upload(ctx context.Context, req UploadRequest) (*models.File, error) {
	if strings.TrimSpace(req.Path) == "" {
		return nil, fmt.Errorf("%w: path is required", common.ErrInvalidInput)
	}
	if req.Size < 0 {
		return nil, fmt.Errorf("%w: negative size", common.ErrInvalidInput)
	}

	var (
		file    *models.File
		written bool
	)

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		f, err := s.repomanager.Files(tx).Create(ctx, models.FileCreate{
			Name:     req.Name,
			Path:     req.Path,
			Size:     req.Size,
			AuthorID: req.OwnerID,
		})
		if err != nil {
			return err
		}

		if err := s.blobs.Put(ctx, f.ID.String(), req.Body, req.Size); err != nil {
			return fmt.Errorf("error storing blob: %w", err)
		}
		written = true
		file = f
		return nil
	})
	if err != nil {
		if written {
			s.removeBlob(ctx, file.ID, "upload commit failed")
		}
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	s.logger.Info(ctx, "file uploaded",
		"id", file.ID, "path", file.Path, "owner", file.AuthorID, "size", humanize.IBytes(uint64(file.Size)))
	return file, nil
}

// List returns the caller's files, oldest first. Never nil.
func (s *FileService) List(ctx context.Context, ownerID int64) ([]*models.File, error) {
	list, err := s.repomanager.Files(s.repomanager.Conn()).GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	return list, nil
}

// IsFileID reports whether ref is a file id in canonical form. Other refs,
// including non-canonical spellings of an id, are treated as paths.
func IsFileID(ref string) bool {
	id, err := uuid.Parse(ref)
	return err == nil && id.String() == ref
}

func (s *FileService) lookup(ctx context.Context, repo repositories.FileRepository, ownerID int64, ref string) (*models.File, error) {
	if IsFileID(ref) {
		return repo.GetByIDAndOwner(ctx, uuid.MustParse(ref), ownerID)
	}
	return repo.GetByPathAndOwner(ctx, ref, ownerID)
}

// Get resolves ref (file id or path) among the caller's files. Files of
// other users are reported as common.ErrNotFound.
func (s *FileService) Get(ctx context.Context, ownerID int64, ref string) (*models.File, error) {
	return s.lookup(ctx, s.repomanager.Files(s.repomanager.Conn()), ownerID, ref)
}

// Open resolves ref and opens its blob, sniffing the content type from the
// first bytes.
func (s *FileService) Open(ctx context.Context, ownerID int64, ref string) (*Download, error) {
	file, err := s.Get(ctx, ownerID, ref)
	if err != nil {
		return nil, err
	}

	rc, err := s.blobs.Open(ctx, file.ID.String())
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Error(ctx, "file row has no blob", "id", file.ID)
		}
		return nil, fmt.Errorf("error opening blob: %w", err)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		rc.Close()
		return nil, fmt.Errorf("error reading blob: %w", err)
	}
	head = head[:n]

	return &Download{
		File:        file,
		ContentType: mimetype.Detect(head).String(),
		Body:        readCloser{Reader: io.MultiReader(bytes.NewReader(head), rc), Closer: rc},
	}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// Delete removes the caller's file. The row goes first; a blob that cannot
// be removed afterwards is left to the sweeper.
func (s *FileService) Delete(ctx context.Context, ownerID int64, ref string) error {
	var file *models.File

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Files(tx)
		f, err := s.lookup(ctx, repo, ownerID, ref)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, f); err != nil {
			return err
		}
		file = f
		return nil
	})
	if err != nil {
		return err
	}

	s.removeBlob(ctx, file.ID, "file deleted")
	s.logger.Info(ctx, "file deleted", "id", file.ID, "path", file.Path, "owner", ownerID)
	return nil
}

func (s *FileService) removeBlob(ctx context.Context, id uuid.UUID, reason string) {
	// The request context may already be canceled; cleanup must still run.
	ctx = context.WithoutCancel(ctx)
	if err := s.blobs.Delete(ctx, id.String()); err != nil && !errors.Is(err, common.ErrNotFound) {
		s.logger.Warn(ctx, "blob removal failed, leaving it to the sweeper", "id", id, "reason", reason, "error", err)
	}
}

// Ping reports whether the file store answers and how long it took.
func (s *FileService) Ping(ctx context.Context) (bool, time.Duration) {
	start := time.Now()
	ok := s.repomanager.Files(s.repomanager.Conn()).Ping(ctx)
	return ok, time.Since(start)
}
