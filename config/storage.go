package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// StorageConfig describes where flat-index snapshots are kept in S3.
// An empty Bucket keeps snapshots on the local filesystem.
type StorageConfig struct {
	Bucket      string `mapstructure:"bucket"`
	Region      string `mapstructure:"region"`
	SnapshotKey string `mapstructure:"snapshot_key"`
}

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     *s3.Client
	BucketName string
	Key        string
}

// NewS3Config initializes the S3 client from the shared AWS configuration
func NewS3Config(ctx context.Context, sc StorageConfig) (*S3Config, error) {
	if sc.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is not configured")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(sc.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Config{
		Client:     s3.NewFromConfig(awsCfg),
		BucketName: sc.Bucket,
		Key:        sc.SnapshotKey,
	}, nil
}
