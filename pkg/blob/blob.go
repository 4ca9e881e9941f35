// Package blob stores uploaded files in S3-compatible object storage.
package blob

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"trujobs-api/config"
	"trujobs-api/internal/domain"
)

const (
	ProviderS3    = "s3"
	ProviderMinIO = "minio"
)

// New builds the store selected by BLOB_PROVIDER.
func New(ctx context.Context, cfg *config.Config) (domain.BlobStore, error) {
	switch cfg.BlobProvider {
	case ProviderS3, "":
		return NewS3Store(ctx, S3Config{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.BlobBucket,
			Endpoint:        cfg.S3Endpoint,
			PublicBaseURL:   cfg.BlobPublicBaseURL,
		})
	case ProviderMinIO:
		store, err := NewMinIOStore(MinIOConfig{
			Endpoint:      cfg.MinIOEndpoint,
			AccessKey:     cfg.MinIOAccessKey,
			SecretKey:     cfg.MinIOSecretKey,
			UseSSL:        cfg.MinIOUseSSL,
			Bucket:        cfg.BlobBucket,
			PublicBaseURL: cfg.BlobPublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown blob provider %q", cfg.BlobProvider)
	}
}

func objectURL(base, name string) string {
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(name)
}

func withScheme(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return "https://" + endpoint
}

func orOctetStream(contentType string) string {
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}
