package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/filestorage/internal/common"
	"github.com/dmitrijs2005/filestorage/internal/dbx"
)

// MemorySchema describes an entity to MemoryRepository. Key renders the
// primary key the same way fmt.Sprint renders the id passed to Get. Unique
// lists the constraints enforced on Create and Update. Nil Name, Owner or
// Path accessors disable the matching lookups.
type MemorySchema[T, C, U any] struct {
	New    func(seq int64, in C) *T
	Apply  func(e *T, in U)
	Key    func(e *T) string
	Unique []func(e *T) string

	Name  func(e *T) string
	Owner func(e *T) int64
	Path  func(e *T) string
}

// MemoryTable holds the rows of one entity kind. It is shared by every
// MemoryRepository bound to it.
type MemoryTable[T any] struct {
	mu    sync.RWMutex
	rows  map[string]*T
	order []string
	seq   int64
}

func NewMemoryTable[T any]() *MemoryTable[T] {
	return &MemoryTable[T]{rows: make(map[string]*T)}
}

// MemoryTx is a DBTX stand-in that records undo steps for in-memory writes.
// Writes are visible to other readers immediately; Rollback reverts them.
// The embedded DBTX is nil, SQL methods must not be called on it.
type MemoryTx struct {
	dbx.DBTX

	mu   sync.Mutex
	undo []func()
}

func (tx *MemoryTx) record(fn func()) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.undo = append(tx.undo, fn)
}

// Rollback reverts every recorded write, newest first.
func (tx *MemoryTx) Rollback() {
	tx.mu.Lock()
	undo := tx.undo
	tx.undo = nil
	tx.mu.Unlock()

	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}

// MemoryRepository implements Repository on top of a MemoryTable. Returned
// entities are copies; mutating them does not touch the table.
type MemoryRepository[T, C, U any] struct {
	table  *MemoryTable[T]
	schema MemorySchema[T, C, U]
	tx     *MemoryTx
}

// NewMemoryRepository binds a repository to table. When db is a *MemoryTx
// the repository's writes join that transaction.
func NewMemoryRepository[T, C, U any](table *MemoryTable[T], db dbx.DBTX, schema MemorySchema[T, C, U]) *MemoryRepository[T, C, U] {
	tx, _ := db.(*MemoryTx)
	return &MemoryRepository[T, C, U]{table: table, schema: schema, tx: tx}
}

func clone[T any](e *T) *T {
	c := *e
	return &c
}

func (r *MemoryRepository[T, C, U]) find(match func(e *T) bool) (*T, error) {
	r.table.mu.RLock()
	defer r.table.mu.RUnlock()

	for _, k := range r.table.order {
		if e := r.table.rows[k]; match(e) {
			return clone(e), nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository[T, C, U]) filter(match func(e *T) bool) []*T {
	r.table.mu.RLock()
	defer r.table.mu.RUnlock()

	result := make([]*T, 0)
	for _, k := range r.table.order {
		if e := r.table.rows[k]; match(e) {
			result = append(result, clone(e))
		}
	}
	return result
}

func (r *MemoryRepository[T, C, U]) Ping(ctx context.Context) bool {
	return ctx.Err() == nil
}

func (r *MemoryRepository[T, C, U]) Get(ctx context.Context, id any) (*T, error) {
	key := fmt.Sprint(id)
	r.table.mu.RLock()
	defer r.table.mu.RUnlock()

	e, ok := r.table.rows[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return clone(e), nil
}

func (r *MemoryRepository[T, C, U]) GetByName(ctx context.Context, name string) (*T, error) {
	if r.schema.Name == nil {
		return nil, common.ErrUnsupported
	}
	return r.find(func(e *T) bool { return r.schema.Name(e) == name })
}

func (r *MemoryRepository[T, C, U]) GetMulti(ctx context.Context, skip, limit int) ([]*T, error) {
	skip, limit = Page(skip, limit)
	all := r.filter(func(*T) bool { return true })
	if skip >= len(all) {
		return make([]*T, 0), nil
	}
	all = all[skip:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemoryRepository[T, C, U]) GetByOwner(ctx context.Context, ownerID int64) ([]*T, error) {
	if r.schema.Owner == nil {
		return nil, common.ErrUnsupported
	}
	return r.filter(func(e *T) bool { return r.schema.Owner(e) == ownerID }), nil
}

func (r *MemoryRepository[T, C, U]) GetByIDAndOwner(ctx context.Context, id any, ownerID int64) (*T, error) {
	if r.schema.Owner == nil {
		return nil, common.ErrUnsupported
	}
	key := fmt.Sprint(id)
	return r.find(func(e *T) bool { return r.schema.Key(e) == key && r.schema.Owner(e) == ownerID })
}

func (r *MemoryRepository[T, C, U]) GetByPathAndOwner(ctx context.Context, path string, ownerID int64) (*T, error) {
	if r.schema.Owner == nil || r.schema.Path == nil {
		return nil, common.ErrUnsupported
	}
	return r.find(func(e *T) bool { return r.schema.Path(e) == path && r.schema.Owner(e) == ownerID })
}

// violates reports whether e collides with a stored row other than the one
// under skipKey. Callers hold the write lock.
func (r *MemoryRepository[T, C, U]) violates(e *T, skipKey string) bool {
	for k, other := range r.table.rows {
		if k == skipKey {
			continue
		}
		for _, u := range r.schema.Unique {
			if u(e) == u(other) {
				return true
			}
		}
	}
	return false
}

func (r *MemoryRepository[T, C, U]) Create(ctx context.Context, in C) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.table.mu.Lock()
	defer r.table.mu.Unlock()

	e := r.schema.New(r.table.seq+1, in)
	key := r.schema.Key(e)
	if _, taken := r.table.rows[key]; taken || r.violates(e, key) {
		return nil, common.ErrAlreadyExists
	}

	r.table.seq++
	r.table.rows[key] = e
	r.table.order = append(r.table.order, key)

	if r.tx != nil {
		r.tx.record(func() { r.remove(key) })
	}

	return clone(e), nil
}

func (r *MemoryRepository[T, C, U]) Update(ctx context.Context, existing *T, in U) (*T, error) {
	key := r.schema.Key(existing)

	r.table.mu.Lock()
	defer r.table.mu.Unlock()

	stored, ok := r.table.rows[key]
	if !ok {
		return nil, common.ErrNotFound
	}

	updated := clone(stored)
	r.schema.Apply(updated, in)
	if r.violates(updated, key) {
		return nil, common.ErrAlreadyExists
	}
	r.table.rows[key] = updated

	if r.tx != nil {
		r.tx.record(func() {
			r.table.mu.Lock()
			defer r.table.mu.Unlock()
			r.table.rows[key] = stored
		})
	}

	return clone(updated), nil
}

func (r *MemoryRepository[T, C, U]) Delete(ctx context.Context, existing *T) error {
	key := r.schema.Key(existing)

	r.table.mu.Lock()
	defer r.table.mu.Unlock()

	stored, ok := r.table.rows[key]
	if !ok {
		return common.ErrNotFound
	}
	r.removeLocked(key)

	if r.tx != nil {
		r.tx.record(func() {
			r.table.mu.Lock()
			defer r.table.mu.Unlock()
			r.table.rows[key] = stored
			r.table.order = append(r.table.order, key)
		})
	}
	return nil
}

func (r *MemoryRepository[T, C, U]) remove(key string) {
	r.table.mu.Lock()
	defer r.table.mu.Unlock()
	r.removeLocked(key)
}

// removeLocked expects r.table.mu to be held for writing.
func (r *MemoryRepository[T, C, U]) removeLocked(key string) {
	delete(r.table.rows, key)
	for i, k := range r.table.order {
		if k == key {
			r.table.order = append(r.table.order[:i], r.table.order[i+1:]...)
			break
		}
	}
}
