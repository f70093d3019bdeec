package domain

// StorageType identifies the type of cloud storage behind a destination path.
type StorageType string

// Supported storage types.
const (
	StorageTypeS3    StorageType = "S3"
	StorageTypeAzure StorageType = "AZURE"
	StorageTypeGCS   StorageType = "GCS"
)

// CredentialType identifies the type of credential.
type CredentialType string

// Supported credential types for storage access.
const (
	CredentialTypeS3    CredentialType = "S3"
	CredentialTypeAzure CredentialType = "AZURE"
	CredentialTypeGCS   CredentialType = "GCS"
)

// StorageCredential holds cloud storage credentials used to presign uploads.
type StorageCredential struct {
	Name           string
	CredentialType CredentialType

	// S3 fields
	KeyID    string
	Secret   string
	Endpoint string // host[:port] without scheme; empty uses the AWS default
	Region   string
	URLStyle string // "path" or "vhost"

	// Azure fields
	AzureAccountName string
	AzureAccountKey  string

	// GCS fields
	GCSKeyFilePath string
}
