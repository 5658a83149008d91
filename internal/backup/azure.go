package backup

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"flexidb/internal/domain"
)

// AzureStore uploads artifacts to an Azure Blob Storage container.
type AzureStore struct {
	client    *azblob.Client
	container string
	prefix    string
	encoder
}

var _ Store = (*AzureStore)(nil)

// NewAzureStore creates a client from a storage account connection string.
func NewAzureStore(connectionString, container, prefix string, compress bool) (*AzureStore, error) {
	if connectionString == "" || container == "" {
		return nil, fmt.Errorf("azure backup requires a connection string and a container")
	}
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return &AzureStore{client: client, container: container, prefix: prefix, encoder: encoder{compress: compress}}, nil
}

func (s *AzureStore) Backend() string { return "azure" }

func (s *AzureStore) Put(ctx context.Context, name string, definition []byte) (*domain.BackupArtifact, error) {
	name, data, err := s.encode(name, definition)
	if err != nil {
		return nil, err
	}
	blob := objectKey(s.prefix, name)
	checksum := Checksum(definition)
	_, err = s.client.UploadBuffer(ctx, s.container, blob, data, &azblob.UploadBufferOptions{
		Metadata: map[string]*string{"blake3": &checksum},
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s/%s: %w", s.container, blob, err)
	}
	url := fmt.Sprintf("%s%s/%s", s.client.URL(), s.container, blob)
	return s.artifact(name, url, data, definition), nil
}
