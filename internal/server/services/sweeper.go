package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/filestorage/internal/common"
	"github.com/dmitrijs2005/filestorage/internal/logging"
	"github.com/dmitrijs2005/filestorage/internal/server/blobstore"
	"github.com/dmitrijs2005/filestorage/internal/server/repositories/repomanager"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Sweeper deletes blobs that have no file row: leftovers of uploads that
// crashed between writing the blob and committing, blobs whose removal
// failed after a delete, and stray temp files.
type Sweeper struct {
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	grace       time.Duration
	interval    time.Duration
	logger      logging.Logger
	now         func() time.Time
}

// NewSweeper returns a sweeper that leaves blobs younger than grace alone,
// they may belong to uploads still in flight.
func NewSweeper(m repomanager.RepositoryManager, blobs blobstore.Store, grace, interval time.Duration, logger logging.Logger) *Sweeper {
	return &Sweeper{
		repomanager: m,
		blobs:       blobs,
		grace:       grace,
		interval:    interval,
		logger:      logger,
		now:         time.Now,
	}
}

// Sweep runs one pass and returns the number of blobs removed. Blobs whose
// row cannot be checked are kept.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	blobs, err := s.blobs.List(ctx)
	if err != nil {
		return 0, err
	}

	repo := s.repomanager.Files(s.repomanager.Conn())
	cutoff := s.now().Add(-s.grace)

	var removed int
	var freed int64
	for _, b := range blobs {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if b.ModTime.After(cutoff) {
			continue
		}

		if id, err := uuid.Parse(b.Key); err == nil && id.String() == b.Key {
			_, err := repo.Get(ctx, id)
			if err == nil {
				continue
			}
			if !errors.Is(err, common.ErrNotFound) {
				s.logger.Warn(ctx, "sweeper cannot check blob", "key", b.Key, "error", err)
				continue
			}
		}

		if err := s.blobs.Delete(ctx, b.Key); err != nil && !errors.Is(err, common.ErrNotFound) {
			s.logger.Warn(ctx, "sweeper cannot delete blob", "key", b.Key, "error", err)
			continue
		}
		removed++
		freed += b.Size
		s.logger.Debug(ctx, "orphan blob removed", "key", b.Key)
	}

	if removed > 0 {
		s.logger.Info(ctx, "orphan blobs swept", "count", removed, "freed", humanize.IBytes(uint64(freed)))
	}
	return removed, nil
}

// Run sweeps every interval until ctx is done. A non-positive interval
// disables it.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error(ctx, "sweep failed", "error", err)
			}
		}
	}
}
