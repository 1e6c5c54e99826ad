package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"project_gallery/internal/lib/filetype"
	storerr "project_gallery/internal/storage"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioFileStorage хранит файлы проектов в бакете S3-совместимого хранилища
type MinioFileStorage struct {
	client *minio.Client
	bucket string
}

type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// NewMinioFileStorage подключается к MinIO и создает бакет, если его нет
func NewMinioFileStorage(ctx context.Context, opts MinioOptions) (*MinioFileStorage, error) {
	const op = "filestorage.NewMinioFileStorage"

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%s: make bucket: %w", op, err)
		}
	}

	return &MinioFileStorage{
		client: client,
		bucket: opts.Bucket,
	}, nil
}

func (s *MinioFileStorage) Save(ctx context.Context, name string, data []byte) error {
	const op = "filestorage.MinioFileStorage.Save"

	if err := ValidateName(name); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: filetype.ContentType(data),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *MinioFileStorage) Read(ctx context.Context, name string) ([]byte, error) {
	const op = "filestorage.MinioFileStorage.Read"

	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.mapErr(err, name))
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.mapErr(err, name))
	}

	return data, nil
}

func (s *MinioFileStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}

	_, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (s *MinioFileStorage) Delete(ctx context.Context, name string) error {
	const op = "filestorage.MinioFileStorage.Delete"

	// RemoveObject не сообщает об отсутствующем объекте
	ok, err := s.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w: %s", op, storerr.ErrFileNotFound, name)
	}

	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *MinioFileStorage) mapErr(err error, name string) error {
	if isNoSuchKey(err) {
		return fmt.Errorf("%w: %s", storerr.ErrFileNotFound, name)
	}
	return err
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
