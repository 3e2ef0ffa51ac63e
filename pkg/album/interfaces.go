package album

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the storage-bucket capability the album is built on. The
// bucket listing is the source of truth for which media files exist.
type ObjectStore interface {
	// GetUploadURL returns a presigned URL permitting a direct write to the
	// given key
	GetUploadURL(ctx context.Context, objectKey string, params UploadURLParams) (string, error)

	// List returns all objects under the given key prefix
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// GetObjectMeta retrieves stored metadata for a single object
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)

	// Upload writes content directly, bypassing presigned URLs
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// ObjectURL returns the public URL clients use to fetch the object
	ObjectURL(objectKey string) string
}

// DocumentStore is the capability the shared metadata document is persisted
// through. Backed by the same bucket as the uploads in production.
type DocumentStore interface {
	// GetDocument returns the raw document, or ErrDocumentNotFound
	GetDocument(ctx context.Context, key string) ([]byte, error)

	// PutDocument replaces the raw document
	PutDocument(ctx context.Context, key string, data []byte) error
}

// MetadataStore owns the mapping from storage key to descriptive metadata.
type MetadataStore interface {
	// Read returns the current mapping. A missing or malformed backing
	// document yields an empty mapping, not an error.
	Read(ctx context.Context) (map[string]MetadataRecord, error)

	// Write merges the given entries into the stored mapping. New entries
	// win per overlapping key; entries absent from the argument are kept.
	Write(ctx context.Context, entries map[string]MetadataRecord) error
}

// UploadURLParams carries the parameters pinned into a presigned upload URL.
type UploadURLParams struct {
	ContentType string
	Metadata    map[string]string
	Expires     time.Duration
}

// ObjectInfo is one entry of a bucket listing.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectMeta contains metadata attached to an object in storage.
type ObjectMeta struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}
