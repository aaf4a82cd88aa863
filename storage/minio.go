package storage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"TuneVault/config"
	"TuneVault/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var minioClient *minio.Client

// InitMinio initializes the MinIO client and ensures the bucket exists.
func InitMinio(cfg *config.Config) error {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("[Storage] created bucket", logger.String("bucket", cfg.MinioBucket))
	}

	minioClient = client
	logger.Info("[Storage] MinIO client initialized", logger.String("endpoint", cfg.MinioEndpoint))
	return nil
}

// GetMinioClient returns the MinIO client instance.
func GetMinioClient() *minio.Client {
	return minioClient
}

// ObjectStore issues time-limited URLs keyed by opaque storage keys. The rest
// of the system only ever sees "given a key, get a readable/writable URL".
type ObjectStore interface {
	PresignGet(ctx context.Context, storageKey string) (string, error)
	PresignPut(ctx context.Context, storageKey string) (string, error)
	Remove(ctx context.Context, storageKey string) error
}

// minioObjectStore implements ObjectStore over a MinIO bucket.
type minioObjectStore struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

// NewMinioObjectStore wraps the initialized client for one bucket.
func NewMinioObjectStore(client *minio.Client, bucket string, expiry time.Duration) ObjectStore {
	return &minioObjectStore{client: client, bucket: bucket, expiry: expiry}
}

// PresignGet returns a time-limited download URL for the object.
func (s *minioObjectStore) PresignGet(ctx context.Context, storageKey string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, storageKey, s.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign GET for %s: %w", storageKey, err)
	}
	return u.String(), nil
}

// PresignPut returns a time-limited upload URL for the object.
func (s *minioObjectStore) PresignPut(ctx context.Context, storageKey string) (string, error) {
	u, err := s.client.PresignedPutObject(ctx, s.bucket, storageKey, s.expiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign PUT for %s: %w", storageKey, err)
	}
	return u.String(), nil
}

// Remove deletes the object.
func (s *minioObjectStore) Remove(ctx context.Context, storageKey string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, storageKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", storageKey, err)
	}
	return nil
}
