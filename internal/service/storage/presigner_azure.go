package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"

	"lakewriter/internal/domain"
)

// AzurePresigner generates SAS URLs for Azure Blob Storage uploads using
// shared-key credentials.
type AzurePresigner struct {
	client *azblob.Client
}

// NewAzurePresignerFromCredential creates an AzurePresigner from a StorageCredential.
// Only account-key authentication can sign SAS tokens locally.
func NewAzurePresignerFromCredential(cred *domain.StorageCredential) (*AzurePresigner, error) {
	if cred == nil {
		return nil, fmt.Errorf("credential is nil")
	}
	if cred.AzureAccountName == "" || cred.AzureAccountKey == "" {
		return nil, fmt.Errorf("Azure credential %q needs an account name and key", cred.Name)
	}

	sharedKeyCred, err := azblob.NewSharedKeyCredential(cred.AzureAccountName, cred.AzureAccountKey)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", cred.AzureAccountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, sharedKeyCred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return &AzurePresigner{client: client}, nil
}

// PresignPutObject generates a SAS URL allowing the blob to be created or overwritten.
func (p *AzurePresigner) PresignPutObject(_ context.Context, container, key string, expiry time.Duration) (string, error) {
	blobClient := p.client.ServiceClient().NewContainerClient(container).NewBlobClient(key)
	sasURL, err := blobClient.GetSASURL(sas.BlobPermissions{Write: true, Create: true}, time.Now().Add(expiry), nil)
	if err != nil {
		return "", fmt.Errorf("generate SAS upload URL for %q/%q: %w", container, key, err)
	}
	return sasURL, nil
}
