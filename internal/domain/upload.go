package domain

import "context"

// BlobStore persists an object under name and returns its public URL.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

type UploadedFile struct {
	URL  string `json:"url"`
	Name string `json:"fileHashWithTimeStampExt"`
}

type UploadUsecase interface {
	UploadFile(ctx context.Context, filename string, data []byte) (*UploadedFile, error)
	UploadJobDescription(ctx context.Context, jobDescription string) (string, error)
}
