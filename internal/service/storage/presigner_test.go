package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakewriter/internal/domain"
)

func TestS3Presigner_PresignPutObject(t *testing.T) {
	p, err := NewS3PresignerFromCredential(&domain.StorageCredential{
		Name:           "test",
		CredentialType: domain.CredentialTypeS3,
		KeyID:          "AKIDEXAMPLE",
		Secret:         "secret",
		Region:         "eu-central-1",
		Endpoint:       "objects.example.com",
	})
	require.NoError(t, err)

	raw, err := p.PresignPutObject(context.Background(), "bucket", "sales/part.csv", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "objects.example.com", u.Host)
	assert.Equal(t, "/bucket/sales/part.csv", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.True(t, strings.HasPrefix(u.Query().Get("X-Amz-Credential"), "AKIDEXAMPLE/"))
}

func TestS3Presigner_RequiresKeys(t *testing.T) {
	_, err := NewS3PresignerFromCredential(&domain.StorageCredential{Name: "empty"})
	require.Error(t, err)

	_, err = NewS3PresignerFromCredential(nil)
	require.Error(t, err)
}

func TestAzurePresigner_PresignPutObject(t *testing.T) {
	p, err := NewAzurePresignerFromCredential(&domain.StorageCredential{
		Name:             "az",
		CredentialType:   domain.CredentialTypeAzure,
		AzureAccountName: "acct",
		AzureAccountKey:  "dGVzdGtleQ==",
	})
	require.NoError(t, err)

	raw, err := p.PresignPutObject(context.Background(), "ctr", "data/f.csv", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "acct.blob.core.windows.net", u.Host)
	assert.Equal(t, "/ctr/data/f.csv", u.Path)
	assert.NotEmpty(t, u.Query().Get("sig"))
}

func TestNewUploadPresignerFromCredential(t *testing.T) {
	p, err := NewUploadPresignerFromCredential(&domain.StorageCredential{
		CredentialType: domain.CredentialTypeS3, KeyID: "k", Secret: "s",
	})
	require.NoError(t, err)
	assert.IsType(t, &S3Presigner{}, p)

	_, err = NewUploadPresignerFromCredential(&domain.StorageCredential{CredentialType: domain.CredentialTypeGCS})
	require.Error(t, err)

	_, err = NewUploadPresignerFromCredential(&domain.StorageCredential{CredentialType: "FTP"})
	require.Error(t, err)
}
