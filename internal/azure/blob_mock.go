package azure

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// MockBlobStorageClient is an in-memory BlobStorage for tests and for running without Azure credentials
type MockBlobStorageClient struct {
	Storage map[string][]byte
	mu      sync.RWMutex
	logger  *zap.Logger

	// FailUploads makes every upload return an error
	FailUploads bool
}

// NewMockBlobStorageClient creates a new mock blob storage client
func NewMockBlobStorageClient(logger *zap.Logger) *MockBlobStorageClient {
	return &MockBlobStorageClient{
		Storage: make(map[string][]byte),
		logger:  logger,
	}
}

// UploadReport stores a report in memory
func (c *MockBlobStorageClient) UploadReport(ctx context.Context, filename string, data []byte) (string, error) {
	return c.put(ReportBlobName(filename), data)
}

// DownloadReport reads a report from memory
func (c *MockBlobStorageClient) DownloadReport(ctx context.Context, blobName string) ([]byte, error) {
	return c.get(blobName)
}

// UploadTone stores a tone in memory
func (c *MockBlobStorageClient) UploadTone(ctx context.Context, filename string, data []byte) (string, error) {
	return c.put(ToneBlobName(filename), data)
}

// DownloadTone reads a tone from memory
func (c *MockBlobStorageClient) DownloadTone(ctx context.Context, blobName string) ([]byte, error) {
	return c.get(blobName)
}

func (c *MockBlobStorageClient) put(blobName string, data []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailUploads {
		return "", fmt.Errorf("mock: upload of %s failed", blobName)
	}

	c.Storage[blobName] = bytes.Clone(data)

	if c.logger != nil {
		c.logger.Debug("mock: blob uploaded",
			zap.String("blob_name", blobName),
			zap.Int("size_bytes", len(data)),
		)
	}

	return blobName, nil
}

func (c *MockBlobStorageClient) get(blobName string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, exists := c.Storage[blobName]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, blobName)
	}

	return bytes.Clone(data), nil
}

// Clear removes all data from in-memory storage
func (c *MockBlobStorageClient) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Storage = make(map[string][]byte)
}

// ListBlobs returns all blob names in storage, sorted
func (c *MockBlobStorageClient) ListBlobs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blobs := make([]string, 0, len(c.Storage))
	for name := range c.Storage {
		blobs = append(blobs, name)
	}
	sort.Strings(blobs)

	return blobs
}
