package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_Variables(t *testing.T) {
	isolateEnv(t)
	t.Setenv("FILESTORE_DATABASE_DSN", "memory")
	t.Setenv("FILESTORE_MIGRATE_ON_START", "false")
	t.Setenv("FILESTORE_ACCESS_TOKEN_TTL", "45m")
	t.Setenv("FILESTORE_UPLOAD_CHUNK_SIZE", "4KiB")
	t.Setenv("FILESTORE_MAX_UPLOAD_SIZE", "10 MB")
	t.Setenv("FILESTORE_SWEEP_INTERVAL", "0s")
	t.Setenv("FILESTORE_CORS_ALLOW_ORIGINS", "http://a.example, http://b.example")

	var c Config
	c.LoadDefaults()
	require.NoError(t, parseEnv(&c))

	assert.Equal(t, "memory", c.DatabaseDSN)
	assert.False(t, c.MigrateOnStart)
	assert.Equal(t, 45*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 4096, c.UploadChunkSize)
	assert.Equal(t, int64(10_000_000), c.MaxUploadSize)
	assert.Equal(t, time.Duration(0), c.SweepInterval)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, c.CORSAllowOrigins)

	assert.Equal(t, "secretKey", c.SecretKey, "unset variables keep defaults")
}

func TestParseEnv_DotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("FILESTORE_SECRET_KEY=dotenv-secret\nFILESTORE_LOG_FORMAT=json\n"), 0o600))
	t.Setenv(EnvFileVar, path)
	// godotenv.Load does not override variables that are already set.
	t.Setenv("FILESTORE_LOG_FORMAT", "pretty")
	t.Cleanup(func() { os.Unsetenv("FILESTORE_SECRET_KEY") })

	var c Config
	c.LoadDefaults()
	require.NoError(t, parseEnv(&c))

	assert.Equal(t, "dotenv-secret", c.SecretKey)
	assert.Equal(t, "pretty", c.LogFormat)
}

func TestParseEnv_BadValues(t *testing.T) {
	tests := map[string]string{
		"FILESTORE_ACCESS_TOKEN_TTL":  "soon",
		"FILESTORE_MAX_UPLOAD_SIZE":   "lots",
		"FILESTORE_MIGRATE_ON_START":  "maybe",
		"FILESTORE_UPLOAD_CHUNK_SIZE": "-",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			isolateEnv(t)
			t.Setenv(key, value)

			var c Config
			c.LoadDefaults()
			assert.Error(t, parseEnv(&c))
		})
	}
}
