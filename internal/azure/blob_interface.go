package azure

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned when a requested blob does not exist
var ErrBlobNotFound = errors.New("blob not found")

// BlobStorage defines the blob operations used by the tone library and the report service.
// Implemented by BlobStorageClient and, for tests, MockBlobStorageClient.
type BlobStorage interface {
	UploadReport(ctx context.Context, filename string, data []byte) (string, error)
	DownloadReport(ctx context.Context, blobName string) ([]byte, error)
	UploadTone(ctx context.Context, filename string, data []byte) (string, error)
	DownloadTone(ctx context.Context, blobName string) ([]byte, error)
}

var (
	_ BlobStorage = (*BlobStorageClient)(nil)
	_ BlobStorage = (*MockBlobStorageClient)(nil)
)

const (
	reportPrefix = "reports/"
	tonePrefix   = "tones/"
)

// ReportBlobName returns the blob name a report filename is stored under
func ReportBlobName(filename string) string {
	return reportPrefix + filename
}

// ToneBlobName returns the blob name a tone filename is stored under
func ToneBlobName(filename string) string {
	return tonePrefix + filename
}
