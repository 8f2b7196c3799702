package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/filestorage/internal/common"
	"github.com/dmitrijs2005/filestorage/internal/dbx"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the SQLSTATE raised for unique index violations.
const pgUniqueViolation = "23505"

// DefaultPingTimeout bounds the liveness query issued by Ping.
const DefaultPingTimeout = 2 * time.Second

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Schema describes how an entity maps onto a table.
//
// Columns lists the selected columns in the order Scan expects them. Insert
// and Update return the columns to write with their values; Update may
// return no columns, in which case the row is returned unchanged. Empty
// lookup columns disable the matching lookups.
type Schema[T, C, U any] struct {
	Table   string
	Columns []string
	OrderBy string

	IDColumn    string
	NameColumn  string
	OwnerColumn string
	PathColumn  string

	Scan   func(row Scanner) (*T, error)
	Insert func(in C) ([]string, []any)
	Update func(in U) ([]string, []any)
	ID     func(e *T) any
}

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository[T, C, U any] struct {
	db          dbx.DBTX
	schema      Schema[T, C, U]
	pingTimeout time.Duration
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository[T, C, U any](db dbx.DBTX, schema Schema[T, C, U]) *PostgresRepository[T, C, U] {
	if schema.OrderBy == "" {
		schema.OrderBy = schema.IDColumn
	}
	return &PostgresRepository[T, C, U]{db: db, schema: schema, pingTimeout: DefaultPingTimeout}
}

func (r *PostgresRepository[T, C, U]) selectList() string {
	return strings.Join(r.schema.Columns, ", ")
}

func (r *PostgresRepository[T, C, U]) selectOne(ctx context.Context, where string, args ...any) (*T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, r.selectList(), r.schema.Table, where)

	item, err := r.schema.Scan(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository[T, C, U]) selectMany(ctx context.Context, tail string, args ...any) ([]*T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s %s`, r.selectList(), r.schema.Table, tail)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*T, 0)
	for rows.Next() {
		item, err := r.schema.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Ping runs SELECT 1 against the table with a short timeout.
func (r *PostgresRepository[T, C, U]) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, r.pingTimeout)
	defer cancel()

	var one int
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT 1 FROM %s LIMIT 1`, r.schema.Table)).Scan(&one)
	return err == nil || errors.Is(err, sql.ErrNoRows)
}

func (r *PostgresRepository[T, C, U]) Get(ctx context.Context, id any) (*T, error) {
	return r.selectOne(ctx, r.schema.IDColumn+` = $1`, id)
}

func (r *PostgresRepository[T, C, U]) GetByName(ctx context.Context, name string) (*T, error) {
	if r.schema.NameColumn == "" {
		return nil, common.ErrUnsupported
	}
	return r.selectOne(ctx, r.schema.NameColumn+` = $1`, name)
}

func (r *PostgresRepository[T, C, U]) GetMulti(ctx context.Context, skip, limit int) ([]*T, error) {
	skip, limit = Page(skip, limit)
	return r.selectMany(ctx, `ORDER BY `+r.schema.OrderBy+` LIMIT $1 OFFSET $2`, limit, skip)
}

func (r *PostgresRepository[T, C, U]) GetByOwner(ctx context.Context, ownerID int64) ([]*T, error) {
	if r.schema.OwnerColumn == "" {
		return nil, common.ErrUnsupported
	}
	return r.selectMany(ctx, `WHERE `+r.schema.OwnerColumn+` = $1 ORDER BY `+r.schema.OrderBy, ownerID)
}

func (r *PostgresRepository[T, C, U]) GetByIDAndOwner(ctx context.Context, id any, ownerID int64) (*T, error) {
	if r.schema.OwnerColumn == "" {
		return nil, common.ErrUnsupported
	}
	return r.selectOne(ctx, r.schema.IDColumn+` = $1 AND `+r.schema.OwnerColumn+` = $2`, id, ownerID)
}

func (r *PostgresRepository[T, C, U]) GetByPathAndOwner(ctx context.Context, path string, ownerID int64) (*T, error) {
	if r.schema.OwnerColumn == "" || r.schema.PathColumn == "" {
		return nil, common.ErrUnsupported
	}
	return r.selectOne(ctx, r.schema.PathColumn+` = $1 AND `+r.schema.OwnerColumn+` = $2`, path, ownerID)
}

// Create inserts a row and returns it as stored. Unique violations are
// reported as common.ErrAlreadyExists.
func (r *PostgresRepository[T, C, U]) Create(ctx context.Context, in C) (*T, error) {
	columns, args := r.schema.Insert(in)

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		r.schema.Table, strings.Join(columns, ", "), placeholders(1, len(args)), r.selectList())

	var item *T
	err := dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		item, err = r.schema.Scan(tx.QueryRowContext(ctx, query, args...))
		return err
	})
	if err != nil {
		return nil, classify(err)
	}

	return item, nil
}

// Update writes the non-empty fields of in to the row identified by existing
// and returns the refreshed row.
func (r *PostgresRepository[T, C, U]) Update(ctx context.Context, existing *T, in U) (*T, error) {
	columns, args := r.schema.Update(in)
	id := r.schema.ID(existing)
	if len(columns) == 0 {
		return r.Get(ctx, id)
	}

	sets := make([]string, len(columns))
	for i, c := range columns {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $%d RETURNING %s`,
		r.schema.Table, strings.Join(sets, ", "), r.schema.IDColumn, len(args)+1, r.selectList())

	var item *T
	err := dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		item, err = r.schema.Scan(tx.QueryRowContext(ctx, query, append(args, id)...))
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, classify(err)
	}

	return item, nil
}

// Delete removes the row identified by existing. Deleting a missing row
// yields common.ErrNotFound.
func (r *PostgresRepository[T, C, U]) Delete(ctx context.Context, existing *T) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, r.schema.Table, r.schema.IDColumn)

	return dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, query, r.schema.ID(existing))
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected error: %w", err)
		}
		if n == 0 {
			return common.ErrNotFound
		}
		return nil
	})
}

func placeholders(from, n int) string {
	p := make([]string, n)
	for i := range p {
		p[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(p, ", ")
}

// classify maps unique violations to common.ErrAlreadyExists and wraps the rest.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", common.ErrAlreadyExists, pgErr.ConstraintName)
	}
	return fmt.Errorf("db error: %w", err)
}
