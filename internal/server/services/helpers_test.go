package services

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/filestorage/internal/cryptox"
	"github.com/dmitrijs2005/filestorage/internal/logging"
	"github.com/dmitrijs2005/filestorage/internal/server/blobstore"
	"github.com/dmitrijs2005/filestorage/internal/server/config"
	"github.com/dmitrijs2005/filestorage/internal/server/repositories/repomanager"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// testParams keeps argon2 fast in tests.
var testParams = cryptox.Params{Memory: 64, Time: 1, Threads: 1, SaltLen: 16, KeyLen: 32}

type testEnv struct {
	rm    repomanager.RepositoryManager
	fs    afero.Fs
	blobs *blobstore.FileSystemStore
	users *UserService
	files *FileService
	cfg   *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, repomanager.NewMemoryRepositoryManager())
}

func newTestEnvWith(t *testing.T, rm repomanager.RepositoryManager) *testEnv {
	t.Helper()

	cfg := &config.Config{
		SecretKey:                   "test-secret",
		AccessTokenValidityDuration: time.Hour,
	}

	fsys := afero.NewMemMapFs()
	blobs, err := blobstore.NewFileSystemStore(fsys, "static", 16)
	require.NoError(t, err)

	logger := logging.NewDiscardLogger()

	return &testEnv{
		rm:    rm,
		fs:    fsys,
		blobs: blobs,
		users: NewUserServiceWithParams(rm, cfg, logger, testParams),
		files: NewFileService(rm, blobs, logger),
		cfg:   cfg,
	}
}
