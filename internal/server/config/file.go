package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/filestorage/internal/timex"
)

// FileConfig is the on-disk form of Config, read from JSON or TOML.
//
// Durations use timex.Duration so both "30m" and integer nanoseconds (JSON
// only) are accepted. Sizes are strings understood by go-humanize ("1KiB",
// "100 MB", "4096"). Absent keys leave the current value untouched.
type FileConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http" toml:"endpoint_addr_http"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc" toml:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn" toml:"database_dsn"`
	MigrateOnStart              *bool          `json:"migrate_on_start" toml:"migrate_on_start"`
	SecretKey                   string         `json:"secret_key" toml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" toml:"access_token_validity_duration"`
	BlobBackend                 string         `json:"blob_backend" toml:"blob_backend"`
	BlobDir                     string         `json:"blob_dir" toml:"blob_dir"`
	UploadChunkSize             string         `json:"upload_chunk_size" toml:"upload_chunk_size"`
	MaxUploadSize               string         `json:"max_upload_size" toml:"max_upload_size"`
	S3RootUser                  string         `json:"s3_root_user" toml:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password" toml:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket" toml:"s3_bucket"`
	S3Region                    string         `json:"s3_region" toml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" toml:"s3_base_endpoint"`
	S3Prefix                    string         `json:"s3_prefix" toml:"s3_prefix"`
	SweepInterval               timex.Duration `json:"sweep_interval" toml:"sweep_interval"`
	SweepGracePeriod            timex.Duration `json:"sweep_grace_period" toml:"sweep_grace_period"`
	LogFormat                   string         `json:"log_format" toml:"log_format"`
	LogLevel                    string         `json:"log_level" toml:"log_level"`
	CORSAllowOrigins            []string       `json:"cors_allow_origins" toml:"cors_allow_origins"`
}

// parseFile overlays the config file at path onto config. The format is
// picked by extension: ".toml" is TOML, anything else JSON. An empty path
// is a no-op.
func parseFile(config *Config, path string) error {
	if path == "" {
		return nil
	}

	c := &FileConfig{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, c); err != nil {
			return fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	}

	return c.apply(config)
}

func (c *FileConfig) apply(config *Config) error {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.BlobBackend, c.BlobBackend)
	setString(&config.BlobDir, c.BlobDir)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3Prefix, c.S3Prefix)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)

	if c.MigrateOnStart != nil {
		config.MigrateOnStart = *c.MigrateOnStart
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.SweepInterval.Duration != 0 {
		config.SweepInterval = c.SweepInterval.Duration
	}
	if c.SweepGracePeriod.Duration != 0 {
		config.SweepGracePeriod = c.SweepGracePeriod.Duration
	}
	if len(c.CORSAllowOrigins) > 0 {
		config.CORSAllowOrigins = c.CORSAllowOrigins
	}

	return errors.Join(
		setInt(&config.UploadChunkSize, "upload_chunk_size", c.UploadChunkSize),
		setBytes(&config.MaxUploadSize, "max_upload_size", c.MaxUploadSize),
	)
}
