// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"lakewriter/internal/domain"
)

// Catalog backends.
const (
	CatalogBackendSQLite = "sqlite"
	CatalogBackendDuckDB = "duckdb"
)

// Config holds the configuration for the CLI, the HTTP API and the storage
// credentials used to presign uploads.
type Config struct {
	LogLevel   string // log level: debug, info, warn, error (default "info")
	Env        string // environment: "development" (default) or "production"
	ListenAddr string // HTTP listen address (default ":8080")

	CatalogBackend string  // "sqlite" (default) or "duckdb"
	MetaDBPath     string  // SQLite metastore path (default "lakewriter_meta.sqlite")
	DuckDBPath     string  // DuckDB database path; empty means in-memory
	CatalogRPS     float64 // catalog lookups per second; 0 disables throttling
	CatalogBurst   int     // catalog lookup burst (default 10)

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	UploadURLExpiry time.Duration // lifetime of presigned upload URLs (default 1h)

	// S3 fields are optional; nil when not configured.
	S3KeyID    *string
	S3Secret   *string
	S3Endpoint *string
	S3Region   *string
	S3URLStyle string

	AzureAccountName string
	AzureAccountKey  string
	GCSKeyFile       string

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// HasS3Config returns true if the S3 key pair is set. Endpoint and region
// fall back to AWS defaults.
func (c *Config) HasS3Config() bool {
	return c.S3KeyID != nil && c.S3Secret != nil
}

// StorageCredential builds the credential used to presign uploads to the
// given storage type.
func (c *Config) StorageCredential(storageType domain.StorageType) (*domain.StorageCredential, error) {
	switch storageType {
	case domain.StorageTypeS3:
		if !c.HasS3Config() {
			return nil, domain.ErrValidation("S3 credentials not configured (set KEY_ID and SECRET)")
		}
		cred := &domain.StorageCredential{
			Name:           "env-s3",
			CredentialType: domain.CredentialTypeS3,
			KeyID:          *c.S3KeyID,
			Secret:         *c.S3Secret,
			URLStyle:       c.S3URLStyle,
		}
		if c.S3Endpoint != nil {
			cred.Endpoint = *c.S3Endpoint
		}
		if c.S3Region != nil {
			cred.Region = *c.S3Region
		}
		return cred, nil
	case domain.StorageTypeAzure:
		if c.AzureAccountName == "" || c.AzureAccountKey == "" {
			return nil, domain.ErrValidation("Azure credentials not configured (set AZURE_ACCOUNT_NAME and AZURE_ACCOUNT_KEY)")
		}
		return &domain.StorageCredential{
			Name:             "env-azure",
			CredentialType:   domain.CredentialTypeAzure,
			AzureAccountName: c.AzureAccountName,
			AzureAccountKey:  c.AzureAccountKey,
		}, nil
	case domain.StorageTypeGCS:
		if c.GCSKeyFile == "" {
			return nil, domain.ErrValidation("GCS credentials not configured (set GCS_KEY_FILE)")
		}
		return &domain.StorageCredential{
			Name:           "env-gcs",
			CredentialType: domain.CredentialTypeGCS,
			GCSKeyFilePath: c.GCSKeyFile,
		}, nil
	default:
		return nil, domain.ErrValidation("unsupported storage type %q", storageType)
	}
}

// LoadFromEnv loads configuration from environment variables.
// Storage credentials are optional; the app can start without them.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:         os.Getenv("LOG_LEVEL"),
		Env:              os.Getenv("ENV"),
		ListenAddr:       os.Getenv("LISTEN_ADDR"),
		CatalogBackend:   strings.ToLower(strings.TrimSpace(os.Getenv("CATALOG_BACKEND"))),
		MetaDBPath:       os.Getenv("META_DB_PATH"),
		DuckDBPath:       os.Getenv("DUCKDB_PATH"),
		S3URLStyle:       os.Getenv("URL_STYLE"),
		AzureAccountName: os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:  os.Getenv("AZURE_ACCOUNT_KEY"),
		GCSKeyFile:       os.Getenv("GCS_KEY_FILE"),
	}

	var err error
	if cfg.CatalogRPS, err = parseFloatEnv("CATALOG_RPS"); err != nil {
		return nil, err
	}
	if cfg.CatalogBurst, err = parseIntEnv("CATALOG_BURST"); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = parseFloatEnv("RATE_LIMIT_RPS"); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = parseIntEnv("RATE_LIMIT_BURST"); err != nil {
		return nil, err
	}
	if v := os.Getenv("UPLOAD_URL_EXPIRY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid UPLOAD_URL_EXPIRY %q", v)
		}
		cfg.UploadURLExpiry = d
	}

	// S3 fields are optional; only set if present
	if v := os.Getenv("KEY_ID"); v != "" {
		cfg.S3KeyID = &v
	}
	if v := os.Getenv("SECRET"); v != "" {
		cfg.S3Secret = &v
	}
	if v := os.Getenv("ENDPOINT"); v != "" {
		cfg.S3Endpoint = &v
	}
	if v := os.Getenv("REGION"); v != "" {
		cfg.S3Region = &v
	}

	// CORS
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORSAllowedOrigins = compactNonEmpty(origins)
	}

	// Defaults
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.CatalogBackend == "" {
		cfg.CatalogBackend = CatalogBackendSQLite
	}
	if cfg.CatalogBackend != CatalogBackendSQLite && cfg.CatalogBackend != CatalogBackendDuckDB {
		return nil, fmt.Errorf("CATALOG_BACKEND must be %q or %q, got %q",
			CatalogBackendSQLite, CatalogBackendDuckDB, cfg.CatalogBackend)
	}
	if cfg.MetaDBPath == "" {
		cfg.MetaDBPath = "lakewriter_meta.sqlite"
	}
	if cfg.CatalogBurst == 0 {
		cfg.CatalogBurst = 10
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 100
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 200
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}
	if cfg.UploadURLExpiry == 0 {
		cfg.UploadURLExpiry = time.Hour
	}
	if (cfg.S3KeyID == nil) != (cfg.S3Secret == nil) {
		cfg.Warnings = append(cfg.Warnings, "only one of KEY_ID and SECRET is set; S3 presigning is disabled")
	}

	// Production mode: insecure defaults are fatal errors.
	if cfg.IsProduction() {
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return nil, fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
	}

	return cfg, nil
}

func parseFloatEnv(key string) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return f, nil
}

func parseIntEnv(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = stripQuotes(strings.TrimSpace(value))
		// Env vars take precedence.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
