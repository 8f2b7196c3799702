package repomanager

import (
	"context"

	"github.com/dmitrijs2005/filestorage/internal/dbx"
	"github.com/dmitrijs2005/filestorage/internal/server/models"
	"github.com/dmitrijs2005/filestorage/internal/server/repositories"
	"github.com/dmitrijs2005/filestorage/internal/server/repositories/files"
	"github.com/dmitrijs2005/filestorage/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps all rows in process memory. Transactions are
// undo journals: their writes are visible before commit and reverted on
// error. Uniqueness is therefore checked against uncommitted rows too, so a
// concurrent upload to the same path gets common.ErrAlreadyExists even if the
// transaction holding the path later rolls back; PostgreSQL would let it
// through. Contents are lost on restart.
type MemoryRepositoryManager struct {
	users *repositories.MemoryTable[models.User]
	files *repositories.MemoryTable[models.File]
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users: repositories.NewMemoryTable[models.User](),
		files: repositories.NewMemoryTable[models.File](),
	}
}

func (m *MemoryRepositoryManager) Users(db dbx.DBTX) repositories.UserRepository {
	return users.NewMemoryRepository(m.users, db)
}

// Files returns a file repository. Deleting a user does not cascade here.
func (m *MemoryRepositoryManager) Files(db dbx.DBTX) repositories.FileRepository {
	return files.NewMemoryRepository(m.files, db)
}

func (m *MemoryRepositoryManager) Conn() dbx.DBTX {
	return nil
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) (err error) {
	tx := &repositories.MemoryTx{}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = ctx.Err(); err != nil {
		return err
	}
	if err = fn(ctx, tx); err != nil {
		return err
	}
	return ctx.Err()
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error {
	return nil
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
