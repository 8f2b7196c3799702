// Package repositories defines the data-access contract shared by every
// entity kind together with its PostgreSQL and in-memory implementations.
//
// A repository is parameterised over the entity type T, its creation input C
// and its update input U. Entity packages (users, files) only supply a schema;
// they add no behaviour of their own.
package repositories

import (
	"context"

	"github.com/dmitrijs2005/filestorage/internal/common"
	"github.com/dmitrijs2005/filestorage/internal/server/models"
)

// Repository is the CRUD and lookup contract for one entity kind.
//
// Lookups return common.ErrNotFound when nothing matches. Create returns
// common.ErrAlreadyExists when a uniqueness constraint is violated, so callers
// can tell a conflict apart from a storage failure. Lookups the entity does
// not support return common.ErrUnsupported.
type Repository[T, C, U any] interface {
	// Ping issues a trivial bounded read and reports whether it succeeded.
	// Liveness checks only.
	Ping(ctx context.Context) bool

	Get(ctx context.Context, id any) (*T, error)
	GetByName(ctx context.Context, name string) (*T, error)
	GetMulti(ctx context.Context, skip, limit int) ([]*T, error)
	GetByOwner(ctx context.Context, ownerID int64) ([]*T, error)
	GetByIDAndOwner(ctx context.Context, id any, ownerID int64) (*T, error)
	GetByPathAndOwner(ctx context.Context, path string, ownerID int64) (*T, error)

	Create(ctx context.Context, in C) (*T, error)
	Update(ctx context.Context, existing *T, in U) (*T, error)
	Delete(ctx context.Context, existing *T) error
}

type (
	UserRepository = Repository[models.User, models.UserCreate, models.UserUpdate]
	FileRepository = Repository[models.File, models.FileCreate, models.FileUpdate]
)

// Page normalises pagination arguments: negative skip becomes 0 and a
// non-positive limit becomes common.DefaultPageLimit.
func Page(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = common.DefaultPageLimit
	}
	return skip, limit
}
