package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/filestorage/internal/flagx"
)

var knownFlags = []string{"-a", "-g", "-d", "-s", "-t", "-b", "-dir", "-chunk", "-max", "-u", "-p", "-bucket", "-region", "-e", "-log", "-level"}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string      HTTP bind address (e.g., ":8000")
//	-g string      gRPC health bind address (e.g., ":50051")
//	-d string      PostgreSQL DSN, or "memory"
//	-s string      JWT HMAC secret key
//	-t int         access token validity, minutes
//	-b string      blob backend: filesystem or s3
//	-dir string    blob directory for the filesystem backend
//	-chunk string  upload chunk size ("1KiB")
//	-max string    upload size limit ("100MiB")
//	-u / -p        S3 root user and password
//	-bucket        S3 bucket name
//	-region        S3 region
//	-e string      S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-log string    log format: json, text or pretty
//	-level string  log level
//
// Unknown arguments are dropped by flagx.FilterArgs before parsing so the
// -c/-config flag and other components' flags do not collide.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the HTTP server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run the gRPC health server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", 0, "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.BlobBackend, "b", config.BlobBackend, "blob backend (filesystem, s3)")
	fs.StringVar(&config.BlobDir, "dir", config.BlobDir, "blob directory")
	chunk := fs.String("chunk", "", "upload chunk size")
	maxSize := fs.String("max", "", "max upload size")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "bucket", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.LogFormat, "log", config.LogFormat, "log format (json, text, pretty)")
	fs.StringVar(&config.LogLevel, "level", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *accessTokenValidityDuration > 0 {
		config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	}

	if err := setInt(&config.UploadChunkSize, "-chunk", *chunk); err != nil {
		return err
	}
	return setBytes(&config.MaxUploadSize, "-max", *maxSize)
}
