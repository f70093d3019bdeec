package storage

import (
	"context"
	"fmt"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"lakewriter/internal/domain"
)

// GCSPresigner generates signed URLs for Google Cloud Storage uploads.
type GCSPresigner struct {
	client *gcs.Client
}

// NewGCSPresignerFromCredential creates a GCS presigner from a service-account key file.
func NewGCSPresignerFromCredential(cred *domain.StorageCredential) (*GCSPresigner, error) {
	if cred == nil {
		return nil, fmt.Errorf("credential is nil")
	}
	if cred.GCSKeyFilePath == "" {
		return nil, fmt.Errorf("gcs_key_file_path is required")
	}

	client, err := gcs.NewClient(context.Background(), option.WithAuthCredentialsFile(option.ServiceAccount, cred.GCSKeyFilePath))
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCSPresigner{client: client}, nil
}

// PresignPutObject generates a signed PUT URL for uploading a GCS object.
func (p *GCSPresigner) PresignPutObject(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	signedURL, err := p.client.Bucket(bucket).SignedURL(key, &gcs.SignedURLOptions{
		Method:      "PUT",
		Expires:     time.Now().Add(expiry),
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("sign PutObject for %q/%q: %w", bucket, key, err)
	}
	return signedURL, nil
}

// Close releases the underlying client.
func (p *GCSPresigner) Close() error {
	return p.client.Close()
}
