package blob

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	Bucket        string
	PublicBaseURL string
}

type MinIOStore struct {
	mc        *minio.Client
	bucket    string
	publicURL string
}

func NewMinIOStore(cfg MinIOConfig) (*MinIOStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio access key and secret key are required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	public := cfg.PublicBaseURL
	if public == "" {
		scheme := "http://"
		if cfg.UseSSL {
			scheme = "https://"
		}
		public = scheme + cfg.Endpoint + "/" + cfg.Bucket
	}
	return &MinIOStore{mc: mc, bucket: cfg.Bucket, publicURL: public}, nil
}

// EnsureBucket creates the bucket on first start.
func (m *MinIOStore) EnsureBucket(ctx context.Context) error {
	exists, err := m.mc.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.mc.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

func (m *MinIOStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	_, err := m.mc.PutObject(ctx, m.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: orOctetStream(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return objectURL(m.publicURL, name), nil
}
