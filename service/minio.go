package service

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/V10L1/modulo-assinatura/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioService stores documents in a MinIO bucket and hands out presigned links
type MinioService struct {
	client   *minio.Client
	bucket   string
	config   *config.MinioConfig
	maxBytes int64
}

func NewMinioService(cfg *config.MinioConfig, maxBytes int64) (*MinioService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioService{
		client:   client,
		bucket:   cfg.Bucket,
		config:   cfg,
		maxBytes: maxBytes,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *MinioService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// ObjectName returns where a document is kept in the bucket
func ObjectName(key, name string) string {
	return path.Join(key, path.Base("/"+name))
}

// Store uploads the document and returns a presigned GET URL for it
func (s *MinioService) Store(ctx context.Context, key, name, contentType string, r io.Reader, size int64) (string, error) {
	if s.maxBytes > 0 && size > s.maxBytes {
		return "", fmt.Errorf("%s is %d bytes: %w", name, size, ErrDocumentTooLarge)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := ObjectName(key, name)
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	return s.PresignedURL(ctx, objectName)
}

// PresignedURL generates a link to the object valid for the configured number of days
func (s *MinioService) PresignedURL(ctx context.Context, objectName string) (string, error) {
	expiry := time.Duration(s.config.ExpireDays) * 24 * time.Hour
	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("inline; filename=%q", path.Base(objectName)))

	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return u.String(), nil
}
