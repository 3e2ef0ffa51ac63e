package album

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrUnsupportedFileType indicates the requested MIME type is not on the
	// upload allow-list
	ErrUnsupportedFileType = errors.New("invalid file type, only images and videos are allowed")

	// ErrFileTooLarge indicates the declared upload size exceeds the limit
	ErrFileTooLarge = errors.New("file size exceeds 350MB limit")

	// ErrInvalidReference indicates a media URL that does not contain the
	// upload prefix, so no storage key can be derived from it
	ErrInvalidReference = errors.New("media URL does not reference an uploaded object")

	// ErrMetadataWriteExhausted indicates the metadata document could not be
	// persisted after all retry attempts
	ErrMetadataWriteExhausted = errors.New("metadata write retries exhausted")

	// ErrListingFailed indicates the object store listing call failed
	ErrListingFailed = errors.New("failed to list uploaded files")

	// ErrObjectNotFound indicates an object was not found in the store
	ErrObjectNotFound = errors.New("object not found")

	// ErrDocumentNotFound indicates the shared metadata document does not exist
	ErrDocumentNotFound = errors.New("metadata document not found")
)

// StorageError represents an error from an object store operation
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
