package album

import (
	"context"
)

// Service defines the main interface for the album library
type Service interface {
	// IssueUploadURL validates a proposed upload and mints a time-limited
	// write grant for a freshly generated storage key
	IssueUploadURL(ctx context.Context, req IssueUploadURLRequest) (*UploadGrant, error)

	// ListMedia produces the paginated album view, joining the bucket
	// listing with tracked metadata
	ListMedia(ctx context.Context, req ListMediaRequest) (*MediaPage, error)

	// SaveMediaMetadata records title/uploader for an already uploaded
	// object, addressed by its public media URL. Returns the storage key
	// the metadata was recorded under.
	SaveMediaMetadata(ctx context.Context, req SaveMediaMetadataRequest) (string, error)
}

// IssueUploadURLRequest describes a proposed upload.
type IssueUploadURLRequest struct {
	Filename     string
	Filetype     string
	Filesize     int64
	Title        string
	UploaderName string
}

// ListMediaRequest selects one page of the album listing. Zero values fall
// back to page 1 with 10 items.
type ListMediaRequest struct {
	Page  int
	Limit int
}

// SaveMediaMetadataRequest attaches descriptive metadata to an uploaded
// object after the fact.
type SaveMediaMetadataRequest struct {
	MediaURL     string
	Title        string
	MediaType    string
	UploaderName string
}

// MediaPage is one page of the reconciled album listing.
type MediaPage struct {
	Items   []MediaItem `json:"items"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
	Total   int         `json:"total"`
	HasMore bool        `json:"hasMore"`
}
