package album

import (
	"path"
	"strings"
	"time"
)

// MediaType is the domain type for how clients should render an item.
type MediaType string

// Media type constants (typed).
const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// DefaultUploaderName is shown for items that were never captioned.
const DefaultUploaderName = "anonymous guest"

// MaxUploadSize is the largest accepted upload in bytes (350 MiB).
const MaxUploadSize = 350 * 1024 * 1024

// UploadGrantTTL is how long an issued upload URL stays valid.
const UploadGrantTTL = 15 * time.Minute

// DefaultUploadPrefix is the bucket prefix all album uploads live under.
const DefaultUploadPrefix = "wedding-uploads/"

// MediaItem is one entry in the user-facing album listing. Its identity is
// the storage key of the uploaded object.
type MediaItem struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Type         MediaType `json:"type"`
	CreatedDate  time.Time `json:"created_date"`
	Title        string    `json:"title,omitempty"`
	UploaderName string    `json:"uploader_name,omitempty"`
}

// MetadataRecord holds the descriptive fields tracked for one storage key,
// separately from the object itself. CreatedDate is nil when the writer did
// not record one; the reconciler then falls back to the object's
// last-modified time.
type MetadataRecord struct {
	Title        string     `json:"title"`
	UploaderName string     `json:"uploader_name"`
	MediaType    string     `json:"media_type,omitempty"`
	CreatedDate  *time.Time `json:"created_date,omitempty"`
}

// UploadGrant is a time-limited write capability for a single storage key.
// Grants are never persisted; the store itself rejects expired URLs.
type UploadGrant struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// allowedMIMETypes is the upload allow-list. Anything else is rejected
// before a grant is issued.
var allowedMIMETypes = map[string]struct{}{
	"image/jpeg":       {},
	"image/png":        {},
	"image/gif":        {},
	"image/webp":       {},
	"image/heic":       {},
	"image/heif":       {},
	"image/avif":       {},
	"image/svg+xml":    {},
	"video/mp4":        {},
	"video/mov":        {},
	"video/quicktime":  {},
	"video/webm":       {},
	"video/hevc":       {},
	"video/3gpp":       {},
	"video/x-matroska": {},
}

// videoExtensions drives the extension heuristic used at listing time.
// Classification is by filename only, not content inspection.
var videoExtensions = map[string]struct{}{
	"mp4":        {},
	"mov":        {},
	"webm":       {},
	"quicktime":  {},
	"hevc":       {},
	"3gpp":       {},
	"x-matroska": {},
	"mkv":        {},
	"video":      {},
}

// IsAllowedType reports whether the given MIME type may be uploaded.
func IsAllowedType(mimeType string) bool {
	_, ok := allowedMIMETypes[mimeType]
	return ok
}

// ClassifyKey maps a storage key to a media type by its file extension.
// Keys without a recognized video extension classify as image.
func ClassifyKey(key string) MediaType {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
	if _, ok := videoExtensions[ext]; ok {
		return MediaTypeVideo
	}
	return MediaTypeImage
}
