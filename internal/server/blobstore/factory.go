package blobstore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/filestorage/internal/server/config"
	"github.com/spf13/afero"
)

// NewFromConfig creates the Store selected by cfg.BlobBackend.
func NewFromConfig(ctx context.Context, cfg *sc.Config) (Store, error) {
	switch cfg.BlobBackend {
	case sc.BlobBackendFilesystem:
		if cfg.BlobDir == "" {
			return nil, fmt.Errorf("filesystem blob store requires blob dir to be set")
		}
		return NewFileSystemStore(afero.NewOsFs(), cfg.BlobDir, cfg.UploadChunkSize)
	case sc.BlobBackendS3:
		client, err := newS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, cfg.S3Bucket, cfg.S3Prefix, cfg.UploadChunkSize)
	default:
		return nil, fmt.Errorf("unknown blob backend: %s", cfg.BlobBackend)
	}
}

// newS3Client builds a client for an S3-compatible endpoint (MinIO and the
// like) with static credentials and path-style addressing.
func newS3Client(ctx context.Context, cfg *sc.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}
