package config

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the S3 client and bucket info for upload storage
type S3Config struct {
	Client     *s3.Client
	BucketName string
}

// NewS3Config initializes the S3 client from the application configuration.
func NewS3Config(ctx context.Context, cfg *Config) (*S3Config, error) {
	bucket := cfg.S3Bucket
	if bucket == "" {
		bucket = "opsboard-uploads"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}

	return &S3Config{
		Client:     s3.NewFromConfig(awsCfg),
		BucketName: bucket,
	}, nil
}
