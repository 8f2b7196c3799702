package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"endpoint_addr_http":             "www.example:9000",
		"database_dsn":                   "postgres://db",
		"migrate_on_start":               false,
		"secret_key":                     "my_secret_key",
		"access_token_validity_duration": "1m",
		"blob_backend":                   "s3",
		"upload_chunk_size":              "8KiB",
		"max_upload_size":                "1MiB",
		"s3_bucket":                      "bucket",
		"s3_prefix":                      "files/",
		"sweep_interval":                 int64(time.Minute),
		"cors_allow_origins":             []string{"http://ui.example"},
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseFile(cfg, path))

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.False(t, cfg.MigrateOnStart)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, BlobBackendS3, cfg.BlobBackend)
		assert.Equal(t, 8192, cfg.UploadChunkSize)
		assert.Equal(t, int64(1<<20), cfg.MaxUploadSize)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "files/", cfg.S3Prefix)
		assert.Equal(t, time.Minute, cfg.SweepInterval)
		assert.Equal(t, []string{"http://ui.example"}, cfg.CORSAllowOrigins)

		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC, "absent keys keep the current value")
	})

	t.Run("no file → no changes", func(t *testing.T) {
		cfg := &Config{EndpointAddrHTTP: "defaults:1234", SecretKey: "key"}
		require.NoError(t, parseFile(cfg, ""))

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		assert.Error(t, parseFile(&Config{}, bad))
	})

	t.Run("missing file → error", func(t *testing.T) {
		assert.Error(t, parseFile(&Config{}, filepath.Join(dir, "nope.json")))
	})
}

func Test_parseFile_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint_addr_grpc = ":6000"
secret_key = "toml-secret"
access_token_validity_duration = "2h"
sweep_grace_period = "5m"
blob_dir = "/var/lib/filestore"
max_upload_size = "2 GB"
log_format = "json"
cors_allow_origins = ["http://a", "http://b"]
`), 0o600))

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseFile(cfg, path))

	assert.Equal(t, ":6000", cfg.EndpointAddrGRPC)
	assert.Equal(t, "toml-secret", cfg.SecretKey)
	assert.Equal(t, 2*time.Hour, cfg.AccessTokenValidityDuration)
	assert.Equal(t, 5*time.Minute, cfg.SweepGracePeriod)
	assert.Equal(t, "/var/lib/filestore", cfg.BlobDir)
	assert.Equal(t, int64(2_000_000_000), cfg.MaxUploadSize)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.CORSAllowOrigins)
	assert.True(t, cfg.MigrateOnStart)
}

func Test_parseFile_TOMLInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.toml")
	require.NoError(t, os.WriteFile(path, []byte(`secret_key = `), 0o600))

	assert.Error(t, parseFile(&Config{}, path))
}
