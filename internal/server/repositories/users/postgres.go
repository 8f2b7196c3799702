// Package users binds the generic repository to the "user" table.
package users

import (
	"github.com/dmitrijs2005/filestorage/internal/dbx"
	"github.com/dmitrijs2005/filestorage/internal/server/models"
	"github.com/dmitrijs2005/filestorage/internal/server/repositories"
)

// Schema maps models.User onto the "user" table.
var Schema = repositories.Schema[models.User, models.UserCreate, models.UserUpdate]{
	Table:      `"user"`,
	Columns:    []string{"id", "name", "password"},
	IDColumn:   "id",
	NameColumn: "name",

	Scan: func(row repositories.Scanner) (*models.User, error) {
		u := &models.User{}
		if err := row.Scan(&u.ID, &u.Name, &u.Password); err != nil {
			return nil, err
		}
		return u, nil
	},
	Insert: func(in models.UserCreate) ([]string, []any) {
		return []string{"name", "password"}, []any{in.Name, in.Password}
	},
	Update: func(in models.UserUpdate) ([]string, []any) {
		if in.Name == "" {
			return nil, nil
		}
		return []string{"name"}, []any{in.Name}
	},
	ID: func(u *models.User) any { return u.ID },
}

// NewPostgresRepository returns a user repository bound to db.
func NewPostgresRepository(db dbx.DBTX) repositories.UserRepository {
	return repositories.NewPostgresRepository(db, Schema)
}
