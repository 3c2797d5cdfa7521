package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig locates the bucket used for archives
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStorage implements Storage on an S3-compatible bucket
type MinioStorage struct {
	client *minio.Client
	bucket string
}

// NewMinioStorage connects to the endpoint and creates the bucket when
// it does not exist yet
func NewMinioStorage(ctx context.Context, cfg MinioConfig) (*MinioStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &MinioStorage{client: client, bucket: cfg.Bucket}, nil
}

func (s *MinioStorage) Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	if err := ValidateName(objectName); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to bucket %s: %w", objectName, s.bucket, err)
	}
	return nil
}

func (s *MinioStorage) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	if err := ValidateName(objectName); err != nil {
		return nil, err
	}
	// GetObject is lazy; Stat surfaces a missing key before streaming.
	if _, err := s.client.StatObject(ctx, s.bucket, objectName, minio.StatObjectOptions{}); err != nil {
		return nil, s.mapError(objectName, err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError(objectName, err)
	}
	return obj, nil
}

func (s *MinioStorage) Delete(ctx context.Context, objectName string) error {
	if err := ValidateName(objectName); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return s.mapError(objectName, err)
	}
	return nil
}

func (s *MinioStorage) List(ctx context.Context) ([]ObjectInfo, error) {
	objects := []ObjectInfo{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", s.bucket, obj.Err)
		}
		objects = append(objects, ObjectInfo{
			Name:       obj.Key,
			Size:       obj.Size,
			ModifiedAt: obj.LastModified.UTC(),
		})
	}
	sortObjects(objects)
	return objects, nil
}

func (s *MinioStorage) mapError(objectName string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s", ErrNotFound, objectName)
	}
	return fmt.Errorf("failed to access %s in bucket %s: %w", objectName, s.bucket, err)
}
