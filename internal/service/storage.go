package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/opsboard/backend/config"
)

// allowed upload content types, mapped to stored extensions
var uploadExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// StorageService stores uploaded photos and receipts in S3.
type StorageService struct {
	s3Config *config.S3Config
}

func NewStorageService(s3Config *config.S3Config) *StorageService {
	return &StorageService{s3Config: s3Config}
}

// Upload stores the content under a generated key and returns its public URL.
func (s *StorageService) Upload(ctx context.Context, kind string, contentType string, body io.Reader) (string, error) {
	ext, ok := uploadExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}

	kind = strings.Trim(path.Clean(kind), "/")
	if kind == "" || kind == "." {
		kind = "uploads"
	}
	key := fmt.Sprintf("%s/%s%s", kind, uuid.New().String(), ext)

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key), nil
}
