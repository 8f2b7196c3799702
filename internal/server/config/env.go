package config

import (
	"errors"
	"io/fs"
	"os"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// EnvFileVar names the variable pointing at the dotenv file. Defaults to ".env".
const EnvFileVar = "FILESTORE_ENV_FILE"

// EnvConfig mirrors Config as environment variables. Values stay textual so
// unset and empty variables can be told apart from zero values.
type EnvConfig struct {
	EndpointAddrHTTP            string `env:"FILESTORE_HTTP_ADDR"`
	EndpointAddrGRPC            string `env:"FILESTORE_GRPC_ADDR"`
	DatabaseDSN                 string `env:"FILESTORE_DATABASE_DSN"`
	MigrateOnStart              string `env:"FILESTORE_MIGRATE_ON_START"`
	SecretKey                   string `env:"FILESTORE_SECRET_KEY"`
	AccessTokenValidityDuration string `env:"FILESTORE_ACCESS_TOKEN_TTL"`
	BlobBackend                 string `env:"FILESTORE_BLOB_BACKEND"`
	BlobDir                     string `env:"FILESTORE_BLOB_DIR"`
	UploadChunkSize             string `env:"FILESTORE_UPLOAD_CHUNK_SIZE"`
	MaxUploadSize               string `env:"FILESTORE_MAX_UPLOAD_SIZE"`
	S3RootUser                  string `env:"FILESTORE_S3_ROOT_USER"`
	S3RootPassword              string `env:"FILESTORE_S3_ROOT_PASSWORD"`
	S3Bucket                    string `env:"FILESTORE_S3_BUCKET"`
	S3Region                    string `env:"FILESTORE_S3_REGION"`
	S3BaseEndpoint              string `env:"FILESTORE_S3_BASE_ENDPOINT"`
	S3Prefix                    string `env:"FILESTORE_S3_PREFIX"`
	SweepInterval               string `env:"FILESTORE_SWEEP_INTERVAL"`
	SweepGracePeriod            string `env:"FILESTORE_SWEEP_GRACE_PERIOD"`
	LogFormat                   string `env:"FILESTORE_LOG_FORMAT"`
	LogLevel                    string `env:"FILESTORE_LOG_LEVEL"`
	CORSAllowOrigins            string `env:"FILESTORE_CORS_ALLOW_ORIGINS"`
}

// parseEnv loads the dotenv file, if any, into the process environment
// (existing variables win) and then overlays FILESTORE_* variables.
func parseEnv(config *Config) error {
	path := os.Getenv(EnvFileVar)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	e := &EnvConfig{}
	if _, err := env.UnmarshalFromEnviron(e); err != nil {
		return err
	}
	return e.apply(config)
}

func (e *EnvConfig) apply(config *Config) error {
	setString(&config.EndpointAddrHTTP, e.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, e.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, e.DatabaseDSN)
	setString(&config.SecretKey, e.SecretKey)
	setString(&config.BlobBackend, e.BlobBackend)
	setString(&config.BlobDir, e.BlobDir)
	setString(&config.S3RootUser, e.S3RootUser)
	setString(&config.S3RootPassword, e.S3RootPassword)
	setString(&config.S3Bucket, e.S3Bucket)
	setString(&config.S3Region, e.S3Region)
	setString(&config.S3BaseEndpoint, e.S3BaseEndpoint)
	setString(&config.S3Prefix, e.S3Prefix)
	setString(&config.LogFormat, e.LogFormat)
	setString(&config.LogLevel, e.LogLevel)
	setList(&config.CORSAllowOrigins, e.CORSAllowOrigins)

	return errors.Join(
		setBool(&config.MigrateOnStart, "FILESTORE_MIGRATE_ON_START", e.MigrateOnStart),
		setDuration(&config.AccessTokenValidityDuration, "FILESTORE_ACCESS_TOKEN_TTL", e.AccessTokenValidityDuration),
		setInt(&config.UploadChunkSize, "FILESTORE_UPLOAD_CHUNK_SIZE", e.UploadChunkSize),
		setBytes(&config.MaxUploadSize, "FILESTORE_MAX_UPLOAD_SIZE", e.MaxUploadSize),
		setDuration(&config.SweepInterval, "FILESTORE_SWEEP_INTERVAL", e.SweepInterval),
		setDuration(&config.SweepGracePeriod, "FILESTORE_SWEEP_GRACE_PERIOD", e.SweepGracePeriod),
	)
}
