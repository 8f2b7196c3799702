// Package files binds the generic repository to the "file" table.
package files

import (
	"github.com/dmitrijs2005/filestorage/internal/dbx"
	"github.com/dmitrijs2005/filestorage/internal/server/models"
	"github.com/dmitrijs2005/filestorage/internal/server/repositories"
	"github.com/google/uuid"
)

// NewID generates file ids. Replaced in tests.
var NewID = uuid.New

// Schema maps models.File onto the "file" table. Ids are generated on the
// client side so the blob name is known before the row commits.
var Schema = repositories.Schema[models.File, models.FileCreate, models.FileUpdate]{
	Table:       `"file"`,
	Columns:     []string{"id", "name", "created_at", "path", "size", "author_id"},
	OrderBy:     "created_at, id",
	IDColumn:    "id",
	NameColumn:  "name",
	OwnerColumn: "author_id",
	PathColumn:  "path",

	Scan: func(row repositories.Scanner) (*models.File, error) {
		f := &models.File{}
		if err := row.Scan(&f.ID, &f.Name, &f.CreatedAt, &f.Path, &f.Size, &f.AuthorID); err != nil {
			return nil, err
		}
		return f, nil
	},
	Insert: func(in models.FileCreate) ([]string, []any) {
		return []string{"id", "name", "path", "size", "author_id"},
			[]any{NewID(), in.Name, in.Path, in.Size, in.AuthorID}
	},
	Update: func(in models.FileUpdate) ([]string, []any) {
		if in.Path == "" {
			return nil, nil
		}
		return []string{"path"}, []any{in.Path}
	},
	ID: func(f *models.File) any { return f.ID },
}

// NewPostgresRepository returns a file repository bound to db.
func NewPostgresRepository(db dbx.DBTX) repositories.FileRepository {
	return repositories.NewPostgresRepository(db, Schema)
}
