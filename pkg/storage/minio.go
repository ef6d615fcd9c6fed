package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PublicURL string
}

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Put(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, bucket, name string) error
}

type MinioStore struct {
	client    *minio.Client
	publicURL string
}

func NewMinioStore(cfg *Config) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinioStore{client: client, publicURL: strings.TrimRight(cfg.PublicURL, "/")}, nil
}

// EnsureBucket creates bucket with an anonymous read policy when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return err
	}
	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
	return s.client.SetBucketPolicy(ctx, bucket, policy)
}

func (s *MinioStore) Put(ctx context.Context, bucket, name string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object %s/%s: %w", bucket, name, err)
	}
	return s.PublicURL(bucket, name), nil
}

func (s *MinioStore) Remove(ctx context.Context, bucket, name string) error {
	if err := s.client.RemoveObject(ctx, bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s/%s: %w", bucket, name, err)
	}
	return nil
}

func (s *MinioStore) PublicURL(bucket, name string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicURL, bucket, name)
}
