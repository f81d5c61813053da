// Package storage keeps applicant document files in an S3-compatible object store.
// Files are streamed through and never written to local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrObjectNotFound is returned when a key has no object behind it.
var ErrObjectNotFound = errors.New("object not found")

// User metadata stored next to every document object.
const (
	MetaOriginalFilename = "original-filename"
	MetaApplicantID      = "applicant-id"
	MetaDocumentType     = "document-type"
)

const defaultContentType = "application/octet-stream"

// PutObjectOptions describe an upload. Size is the exact byte count, or -1 when unknown.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the object store the document service writes to.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get streams an object. A missing key yields ErrObjectNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object. Removing a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited download URL.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// DocumentKey returns a fresh object key documents/<applicant>/<uuid><ext> and its base name.
// The extension of filename is kept lower-cased so the stored name stays predictable.
func DocumentKey(applicantID, filename string) (key, name string) {
	name = uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	return path.Join("documents", applicantID, name), name
}

// DocumentOptions builds the upload options for one applicant document.
func DocumentOptions(applicantID, docType, filename, contentType string, size int64) PutObjectOptions {
	if contentType == "" {
		contentType = defaultContentType
	}
	return PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			MetaOriginalFilename: filename,
			MetaApplicantID:      applicantID,
			MetaDocumentType:     docType,
		},
	}
}
