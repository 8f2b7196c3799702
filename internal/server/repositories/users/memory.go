package users

import (
	"strconv"

	"github.com/dmitrijs2005/filestorage/internal/dbx"
	"github.com/dmitrijs2005/filestorage/internal/server/models"
	"github.com/dmitrijs2005/filestorage/internal/server/repositories"
)

var memorySchema = repositories.MemorySchema[models.User, models.UserCreate, models.UserUpdate]{
	New: func(seq int64, in models.UserCreate) *models.User {
		return &models.User{ID: seq, Name: in.Name, Password: in.Password}
	},
	Apply: func(u *models.User, in models.UserUpdate) {
		if in.Name != "" {
			u.Name = in.Name
		}
	},
	Key:    func(u *models.User) string { return strconv.FormatInt(u.ID, 10) },
	Unique: []func(u *models.User) string{func(u *models.User) string { return u.Name }},
	Name:   func(u *models.User) string { return u.Name },
}

// NewMemoryRepository returns a user repository over table.
func NewMemoryRepository(table *repositories.MemoryTable[models.User], db dbx.DBTX) repositories.UserRepository {
	return repositories.NewMemoryRepository(table, db, memorySchema)
}
