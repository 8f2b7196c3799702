package files

import (
	"time"

	"github.com/dmitrijs2005/filestorage/internal/dbx"
	"github.com/dmitrijs2005/filestorage/internal/server/models"
	"github.com/dmitrijs2005/filestorage/internal/server/repositories"
)

var memorySchema = repositories.MemorySchema[models.File, models.FileCreate, models.FileUpdate]{
	New: func(_ int64, in models.FileCreate) *models.File {
		return &models.File{
			ID:        NewID(),
			Name:      in.Name,
			CreatedAt: time.Now().UTC(),
			Path:      in.Path,
			Size:      in.Size,
			AuthorID:  in.AuthorID,
		}
	},
	Apply: func(f *models.File, in models.FileUpdate) {
		if in.Path != "" {
			f.Path = in.Path
		}
	},
	Key:    func(f *models.File) string { return f.ID.String() },
	Unique: []func(f *models.File) string{func(f *models.File) string { return f.Path }},
	Name:   func(f *models.File) string { return f.Name },
	Owner:  func(f *models.File) int64 { return f.AuthorID },
	Path:   func(f *models.File) string { return f.Path },
}

// NewMemoryRepository returns a file repository over table.
func NewMemoryRepository(table *repositories.MemoryTable[models.File], db dbx.DBTX) repositories.FileRepository {
	return repositories.NewMemoryRepository(table, db, memorySchema)
}
