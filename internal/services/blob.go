package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
)

// BlobService stores uploaded document images in one Blob Storage container.
type BlobService struct {
	client    *azblob.Client
	container string
}

// NewBlobService connects to serviceURL and ensures the container exists.
func NewBlobService(ctx context.Context, serviceURL, container string) (*BlobService, error) {
	if serviceURL == "" {
		return nil, fmt.Errorf("BLOB_SERVICE_URL is required")
	}
	slog.Info("initializing blob service", "blob_url", serviceURL, "container", container)

	var client *azblob.Client
	if usesAzurite(serviceURL) {
		slog.Info("using Azurite shared key credentials for blob service")
		cred, err := azblob.NewSharedKeyCredential(azuriteAccountName, azuriteAccountKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client with shared key: %w", err)
		}
	} else {
		cred, err := NewAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = azblob.NewClient(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client: %w", err)
		}
	}

	if _, err := client.CreateContainer(ctx, container, nil); err != nil && !isAlreadyExists(err) {
		return nil, fmt.Errorf("failed to create container %s: %w", container, err)
	}

	slog.Info("blob service initialized")
	return &BlobService{client: client, container: container}, nil
}

// UploadBytes writes data to blobName with the given content type.
func (s *BlobService) UploadBytes(ctx context.Context, blobName string, data []byte, contentType string) error {
	slog.Info("uploading blob", "container", s.container, "blob_name", blobName, "size_bytes", len(data))
	opts := &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	}
	if _, err := s.client.UploadBuffer(ctx, s.container, blobName, data, opts); err != nil {
		return fmt.Errorf("failed to upload blob %s/%s: %w", s.container, blobName, err)
	}
	return nil
}

// DownloadBytes reads the whole blob.
func (s *BlobService) DownloadBytes(ctx context.Context, blobName string) ([]byte, error) {
	slog.Info("downloading blob", "container", s.container, "blob_name", blobName)
	resp, err := s.client.DownloadStream(ctx, s.container, blobName, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("blob %s: %w", blobName, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to download blob %s/%s: %w", s.container, blobName, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob content: %w", err)
	}
	return data, nil
}

// DeleteBlob removes a blob. A blob that is already gone is not an error.
func (s *BlobService) DeleteBlob(ctx context.Context, blobName string) error {
	if _, err := s.client.DeleteBlob(ctx, s.container, blobName, nil); err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete blob %s/%s: %w", s.container, blobName, err)
	}
	slog.Info("deleted blob", "container", s.container, "blob_name", blobName)
	return nil
}
