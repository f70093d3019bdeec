// Package storage resolves write destinations in cloud object storage, plans
// the objects a write produces, and presigns their uploads.
package storage

import (
	"fmt"
	"net/url"
	"strings"

	"lakewriter/internal/domain"
)

// Destination is a parsed object-storage location.
type Destination struct {
	Type   domain.StorageType
	Scheme string
	Bucket string // S3/GCS bucket or Azure container
	Key    string // object key or key prefix, no leading slash
	raw    string
	root   string // scheme, authority and container up to the key, ending in "/"
}

// IsDirectory reports whether the destination names a prefix rather than an object.
func (d Destination) IsDirectory() bool {
	return d.Key == "" || strings.HasSuffix(d.Key, "/")
}

// String returns the destination as given.
func (d Destination) String() string { return d.raw }

// Join returns the URI of key (relative to the bucket) in the destination's
// scheme. Each key segment is path-escaped.
func (d Destination) Join(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return d.root + strings.Join(segments, "/")
}

// ParseDestination parses an s3://, gs://, az://, abfss:// or Azure https:// URI.
// The key may be empty or end in "/" for prefixes.
func ParseDestination(path string) (Destination, error) {
	u, err := url.Parse(path)
	if err != nil {
		return Destination{}, fmt.Errorf("parse destination %q: %w", path, err)
	}
	d := Destination{Scheme: u.Scheme, raw: path}
	switch u.Scheme {
	case "s3":
		d.Type = domain.StorageTypeS3
		d.Bucket = u.Host
		d.Key = strings.TrimPrefix(u.Path, "/")
		d.root = "s3://" + u.Host + "/"
	case "gs":
		d.Type = domain.StorageTypeGCS
		d.Bucket = u.Host
		d.Key = strings.TrimPrefix(u.Path, "/")
		d.root = "gs://" + u.Host + "/"
	case "abfss", "az", "https":
		container, key, err := parseAzurePath(path)
		if container == "" {
			return Destination{}, domain.ErrInvalidArgumentValue("%s", err.Error())
		}
		d.Type = domain.StorageTypeAzure
		d.Bucket = container
		d.Key = key
		switch u.Scheme {
		case "abfss":
			d.root = "abfss://" + u.User.Username() + "@" + u.Host + "/"
		case "az":
			d.root = "az://" + u.Host + "/"
		default:
			d.root = "https://" + u.Host + "/" + url.PathEscape(container) + "/"
		}
	default:
		return Destination{}, domain.ErrInvalidArgumentValue("unsupported storage scheme %q in %q", u.Scheme, path)
	}
	if d.Bucket == "" {
		return Destination{}, domain.ErrInvalidArgumentValue("missing bucket in %q", path)
	}
	return d, nil
}

// parseAzurePath extracts container and key from an Azure storage URI.
// A missing key is reported as an error alongside the container.
//
// Supported formats:
//
//	abfss://container@account.dfs.core.windows.net/path/to/file
//	az://container/path/to/file
//	https://account.blob.core.windows.net/container/path/to/file
func parseAzurePath(path string) (container, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", fmt.Errorf("parse Azure path %q: %w", path, err)
	}

	switch u.Scheme {
	case "abfss":
		// url.Parse puts the container in userinfo.
		if u.User == nil {
			return "", "", fmt.Errorf("abfss path %q missing container@account component", path)
		}
		container = u.User.Username()
		key = strings.TrimPrefix(u.Path, "/")
	case "az":
		container = u.Host
		key = strings.TrimPrefix(u.Path, "/")
	case "https":
		if !strings.Contains(u.Host, ".blob.core.windows.net") {
			return "", "", fmt.Errorf("unrecognized Azure HTTPS host %q in path %q", u.Host, path)
		}
		parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
		container = parts[0]
		if len(parts) > 1 {
			key = parts[1]
		}
	default:
		return "", "", fmt.Errorf("unrecognized Azure path scheme %q in %q", u.Scheme, path)
	}

	if container == "" {
		return "", "", fmt.Errorf("empty container in Azure path %q", path)
	}
	if key == "" {
		return container, "", fmt.Errorf("empty key in Azure path %q", path)
	}
	return container, key, nil
}
