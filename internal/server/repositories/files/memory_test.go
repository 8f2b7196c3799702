package files

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/filestorage/internal/common"
	"github.com/dmitrijs2005/filestorage/internal/server/models"
	"github.com/dmitrijs2005/filestorage/internal/server/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_OwnerScopedLookups(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(repositories.NewMemoryTable[models.File](), nil)

	a, err := repo.Create(ctx, models.FileCreate{Name: "a", Path: "/a", Size: 1, AuthorID: 1})
	require.NoError(t, err)
	_, err = repo.Create(ctx, models.FileCreate{Name: "b", Path: "/b", Size: 2, AuthorID: 2})
	require.NoError(t, err)

	own, err := repo.GetByOwner(ctx, 1)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, a.ID, own[0].ID)

	got, err := repo.GetByIDAndOwner(ctx, a.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "/a", got.Path)

	got, err = repo.GetByIDAndOwner(ctx, a.ID.String(), 1)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = repo.GetByIDAndOwner(ctx, a.ID, 2)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = repo.GetByPathAndOwner(ctx, "/a", 2)
	assert.ErrorIs(t, err, common.ErrNotFound)

	none, err := repo.GetByOwner(ctx, 3)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryRepository_PathIsGloballyUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(repositories.NewMemoryTable[models.File](), nil)

	_, err := repo.Create(ctx, models.FileCreate{Name: "a", Path: "/same", AuthorID: 1})
	require.NoError(t, err)

	_, err = repo.Create(ctx, models.FileCreate{Name: "b", Path: "/same", AuthorID: 2})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestMemoryRepository_ConcurrentSamePath(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(repositories.NewMemoryTable[models.File](), nil)

	var ok, conflict atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, models.FileCreate{Name: "x", Path: "/race", AuthorID: 1})
			switch {
			case err == nil:
				ok.Add(1)
			case assert.ErrorIs(t, err, common.ErrAlreadyExists):
				conflict.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(15), conflict.Load())
}

func TestMemoryRepository_GetMultiPaging(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(repositories.NewMemoryTable[models.File](), nil)

	for _, p := range []string{"/1", "/2", "/3"} {
		_, err := repo.Create(ctx, models.FileCreate{Name: p, Path: p, AuthorID: 1})
		require.NoError(t, err)
	}

	page, err := repo.GetMulti(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "/2", page[0].Path)

	page, err = repo.GetMulti(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestMemoryRepository_DeleteRollback(t *testing.T) {
	ctx := context.Background()
	table := repositories.NewMemoryTable[models.File]()

	f, err := NewMemoryRepository(table, nil).Create(ctx, models.FileCreate{Name: "a", Path: "/a", AuthorID: 1})
	require.NoError(t, err)

	tx := &repositories.MemoryTx{}
	require.NoError(t, NewMemoryRepository(table, tx).Delete(ctx, f))

	_, err = NewMemoryRepository(table, nil).Get(ctx, f.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	tx.Rollback()

	got, err := NewMemoryRepository(table, nil).Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Path, got.Path)
}

func TestMemoryRepository_ConcurrentDeleteSameRow(t *testing.T) {
	ctx := context.Background()
	table := repositories.NewMemoryTable[models.File]()
	repo := NewMemoryRepository(table, nil)

	f, err := repo.Create(ctx, models.FileCreate{Name: "a", Path: "/a", AuthorID: 1})
	require.NoError(t, err)

	var deleted, missing atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx := &repositories.MemoryTx{}
			err := NewMemoryRepository(table, tx).Delete(ctx, f)
			switch {
			case err == nil:
				deleted.Add(1)
			case assert.ErrorIs(t, err, common.ErrNotFound):
				missing.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), deleted.Load())
	assert.Equal(t, int32(15), missing.Load())

	all, err := repo.GetMulti(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}
