package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakewriter/internal/domain"
)

type fakeCredentials struct {
	calls []domain.StorageType
}

func (f *fakeCredentials) StorageCredential(st domain.StorageType) (*domain.StorageCredential, error) {
	f.calls = append(f.calls, st)
	if st != domain.StorageTypeS3 {
		return nil, domain.ErrValidation("no credential for %s", st)
	}
	return &domain.StorageCredential{
		CredentialType: domain.CredentialTypeS3,
		KeyID:          "AKIDEXAMPLE",
		Secret:         "secret",
		Endpoint:       "objects.example.com",
	}, nil
}

func TestPresigners_CachesPerStorageType(t *testing.T) {
	creds := &fakeCredentials{}
	p := NewPresigners(creds)
	dest, err := ParseDestination("s3://bucket/data/")
	require.NoError(t, err)

	first, err := p.PresignerFor(dest)
	require.NoError(t, err)
	second, err := p.PresignerFor(dest)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, []domain.StorageType{domain.StorageTypeS3}, creds.calls)
	require.NoError(t, p.Close())
}

func TestPresigners_MissingCredential(t *testing.T) {
	p := NewPresigners(&fakeCredentials{})
	dest, err := ParseDestination("gs://bucket/data/")
	require.NoError(t, err)

	_, err = p.PresignerFor(dest)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestPlannerFromSource_SignsWithResolvedPresigner(t *testing.T) {
	planner := NewPlannerFromSource(NewPresigners(&fakeCredentials{}), 5*time.Minute)

	plan, err := planner.Plan(context.Background(), salesRecord(t), domain.WriteArgs{Path: "s3://bucket/out/sales.csv"})
	require.NoError(t, err)
	require.Len(t, plan.Objects, 1)
	assert.Contains(t, plan.Objects[0].UploadURL, "objects.example.com/bucket/out/sales.csv")
	assert.Contains(t, plan.Objects[0].UploadURL, "X-Amz-Expires=300")
	assert.False(t, plan.Objects[0].ExpiresAt.IsZero())

	_, err = planner.Plan(context.Background(), salesRecord(t), domain.WriteArgs{Path: "gs://bucket/out/sales.csv"})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
