package repomanager

import (
	"context"

	"github.com/dmitrijs2005/filestorage/internal/dbx"
	"github.com/dmitrijs2005/filestorage/internal/server/repositories"
)

// MemoryDSN selects the in-memory manager instead of PostgreSQL.
const MemoryDSN = "memory"

// RepositoryManager vends repositories bound either to the shared connection
// or to a transaction opened by WithTx.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users(db dbx.DBTX) repositories.UserRepository
	Files(db dbx.DBTX) repositories.FileRepository

	// Conn returns the handle for non-transactional work.
	Conn() dbx.DBTX
	// WithTx runs fn in a transaction; fn's error rolls it back.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error
	Close() error
}

// Open returns the manager for dsn. MemoryDSN yields a fresh in-memory store;
// anything else is treated as a pgx connection string.
func Open(ctx context.Context, dsn string) (RepositoryManager, error) {
	if dsn == MemoryDSN {
		return NewMemoryRepositoryManager(), nil
	}
	return OpenPostgres(ctx, dsn)
}
