// Package storage contains object storage abstractions for S3-compatible
// backends. Implementations rely on streaming I/O only and never touch local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"strings"
	"time"
)

// ErrObjectNotFound is returned by Get when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	// ContentDisposition is stored with the object and returned on plain GETs.
	ContentDisposition string
	Metadata           map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	// A non-empty filename makes the URL download as an attachment with that name.
	PresignGet(ctx context.Context, key string, expiry time.Duration, filename string) (string, error)
}

// ReportKey is the object key of a generated report. Keys are prefixed with
// the tenant so a bucket listing never mixes tenants.
func ReportKey(tenantID, reportID string) string {
	return path.Join("reports", tenantID, reportID+".pdf")
}

// TenantOfKey returns the tenant a report key belongs to.
func TenantOfKey(key string) (string, bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != "reports" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AttachmentDisposition builds a Content-Disposition header value that
// downloads as filename. Non-ASCII names are RFC 2231 encoded.
func AttachmentDisposition(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": path.Base(filename)})
}
