package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"lakewriter/internal/domain"
)

// Compile-time checks.
var _ UploadPresigner = (*S3Presigner)(nil)
var _ UploadPresigner = (*AzurePresigner)(nil)
var _ UploadPresigner = (*GCSPresigner)(nil)

// UploadPresigner produces time-limited URLs that allow a PUT of one object.
// Implementations: S3Presigner, AzurePresigner, GCSPresigner.
type UploadPresigner interface {
	PresignPutObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// S3Presigner generates presigned S3 URLs with the AWS SDK v2. It also serves
// S3-compatible stores when an endpoint is configured.
type S3Presigner struct {
	presignClient *s3.PresignClient
}

// NewS3PresignerFromCredential creates a presigner from a StorageCredential.
// An empty Endpoint uses the AWS default; otherwise path-style addressing is
// used unless URLStyle is "vhost".
func NewS3PresignerFromCredential(cred *domain.StorageCredential) (*S3Presigner, error) {
	if cred == nil {
		return nil, fmt.Errorf("credential is nil")
	}
	if cred.KeyID == "" || cred.Secret == "" {
		return nil, fmt.Errorf("S3 credential %q needs a key id and secret", cred.Name)
	}
	region := cred.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := s3.Options{
		Region: region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cred.KeyID, cred.Secret, "",
		),
	}
	if cred.Endpoint != "" {
		opts.BaseEndpoint = aws.String(fmt.Sprintf("https://%s", cred.Endpoint))
		opts.UsePathStyle = cred.URLStyle != "vhost"
	}

	return &S3Presigner{
		presignClient: s3.NewPresignClient(s3.New(opts)),
	}, nil
}

// PresignPutObject generates a presigned PUT URL for uploading an S3 object.
func (p *S3Presigner) PresignPutObject(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	result, err := p.presignClient.PresignPutObject(ctx,
		&s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(key),
			ContentType: aws.String("application/octet-stream"),
		},
		s3.WithPresignExpires(expiry),
	)
	if err != nil {
		return "", fmt.Errorf("presign PutObject for %q/%q: %w", bucket, key, err)
	}
	return result.URL, nil
}

// NewUploadPresignerFromCredential creates an UploadPresigner for the credential type.
func NewUploadPresignerFromCredential(cred *domain.StorageCredential) (UploadPresigner, error) {
	if cred == nil {
		return nil, fmt.Errorf("credential is nil")
	}
	switch cred.CredentialType {
	case domain.CredentialTypeS3:
		return NewS3PresignerFromCredential(cred)
	case domain.CredentialTypeAzure:
		return NewAzurePresignerFromCredential(cred)
	case domain.CredentialTypeGCS:
		return NewGCSPresignerFromCredential(cred)
	default:
		return nil, fmt.Errorf("unsupported credential type %q", cred.CredentialType)
	}
}
