package album

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// defaultPageLimit is the page size used when the caller does not supply one.
const defaultPageLimit = 10

// defaultFanoutWorkers bounds concurrent per-object metadata fetches.
const defaultFanoutWorkers = 8

// Object metadata keys carrying caption data attached at upload time.
const (
	metaTitleKey    = "title"
	metaUploaderKey = "uploader-name"
)

// Option is a functional option for configuring the album service
type Option func(*service)

// WithObjectStore sets the object store backing the album
func WithObjectStore(store ObjectStore) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithMetadataStore sets the metadata store
func WithMetadataStore(store MetadataStore) Option {
	return func(s *service) {
		s.metadata = store
	}
}

// WithUploadPrefix overrides the bucket prefix uploads are keyed under
func WithUploadPrefix(prefix string) Option {
	return func(s *service) {
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		s.uploadPrefix = prefix
	}
}

// WithGrantTTL overrides how long issued upload URLs stay valid
func WithGrantTTL(ttl time.Duration) Option {
	return func(s *service) {
		s.grantTTL = ttl
	}
}

// WithFanoutWorkers bounds the concurrency of per-object metadata fetches
// during listing. Zero disables the attached-metadata fallback entirely.
func WithFanoutWorkers(n int) Option {
	return func(s *service) {
		s.fanoutWorkers = n
	}
}

// service is the default Service implementation
type service struct {
	store         ObjectStore
	metadata      MetadataStore
	uploadPrefix  string
	grantTTL      time.Duration
	fanoutWorkers int
}

// New creates a new album service with the given options
func New(options ...Option) (Service, error) {
	svc := &service{
		uploadPrefix:  DefaultUploadPrefix,
		grantTTL:      UploadGrantTTL,
		fanoutWorkers: defaultFanoutWorkers,
	}

	for _, option := range options {
		option(svc)
	}

	if svc.store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if svc.metadata == nil {
		return nil, fmt.Errorf("metadata store is required")
	}

	return svc, nil
}

// IssueUploadURL validates the proposed upload and mints a presigned write
// grant. Validation happens before any store call.
func (s *service) IssueUploadURL(ctx context.Context, req IssueUploadURLRequest) (*UploadGrant, error) {
	if !IsAllowedType(req.Filetype) {
		return nil, ErrUnsupportedFileType
	}
	if req.Filesize > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	// The key never derives from the uploader-chosen filename, only its
	// extension survives.
	key := s.uploadPrefix + uuid.NewString()
	if ext := strings.TrimPrefix(path.Ext(req.Filename), "."); ext != "" {
		key += "." + strings.ToLower(ext)
	}

	params := UploadURLParams{
		ContentType: req.Filetype,
		Expires:     s.grantTTL,
	}
	if req.Title != "" || req.UploaderName != "" {
		// Header-style object metadata rejects arbitrary characters, so
		// caption values travel URL-encoded.
		params.Metadata = make(map[string]string)
		if req.Title != "" {
			params.Metadata[metaTitleKey] = url.QueryEscape(req.Title)
		}
		if req.UploaderName != "" {
			params.Metadata[metaUploaderKey] = url.QueryEscape(req.UploaderName)
		}
	}

	signedURL, err := s.store.GetUploadURL(ctx, key, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return &UploadGrant{
		URL:       signedURL,
		Key:       key,
		ExpiresAt: time.Now().Add(s.grantTTL),
	}, nil
}

// ListMedia reconciles the bucket listing with tracked metadata into one
// page of the album view.
func (s *service) ListMedia(ctx context.Context, req ListMediaRequest) (*MediaPage, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}

	objects, err := s.store.List(ctx, s.uploadPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrListingFailed, err)
	}

	// Fallback ordering while metadata is still unknown.
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})

	records, err := s.metadata.Read(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// The document is best-effort captioning; a broken read must not
		// take the listing down.
		slog.WarnContext(ctx, "metadata read failed, listing with defaults", "error", err)
		records = map[string]MetadataRecord{}
	}
	s.fillFromAttached(ctx, objects, records)

	items := make([]MediaItem, 0, len(objects))
	for _, obj := range objects {
		item := MediaItem{
			ID:           obj.Key,
			URL:          s.store.ObjectURL(obj.Key),
			Type:         ClassifyKey(obj.Key),
			CreatedDate:  obj.LastModified,
			UploaderName: DefaultUploaderName,
		}
		if rec, ok := records[obj.Key]; ok {
			item.Title = rec.Title
			if rec.UploaderName != "" {
				item.UploaderName = rec.UploaderName
			}
			if rec.CreatedDate != nil {
				item.CreatedDate = *rec.CreatedDate
			}
		}
		items = append(items, item)
	}

	// Recorded creation dates can diverge from storage timestamps, so the
	// joined list gets its own ordering pass.
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedDate.After(items[j].CreatedDate)
	})

	total := len(items)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &MediaPage{
		Items:   items[start:end],
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasMore: page*limit < total,
	}, nil
}

// fillFromAttached fetches object-attached caption metadata for keys the
// shared document does not cover. The fan-out is bounded and any per-key
// failure only degrades that key to defaults.
func (s *service) fillFromAttached(ctx context.Context, objects []ObjectInfo, records map[string]MetadataRecord) {
	if s.fanoutWorkers <= 0 {
		return
	}

	var missing []string
	for _, obj := range objects {
		if _, ok := records[obj.Key]; !ok {
			missing = append(missing, obj.Key)
		}
	}
	if len(missing) == 0 {
		return
	}

	workers := s.fanoutWorkers
	if workers > len(missing) {
		workers = len(missing)
	}

	keys := make(chan string)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range keys {
				meta, err := s.store.GetObjectMeta(ctx, key)
				if err != nil {
					slog.WarnContext(ctx, "skipping attached metadata", "key", key, "error", err)
					continue
				}
				rec, ok := recordFromAttached(meta.Metadata)
				if !ok {
					continue
				}
				mu.Lock()
				records[key] = rec
				mu.Unlock()
			}
		}()
	}

feed:
	for _, key := range missing {
		select {
		case keys <- key:
		case <-ctx.Done():
			break feed
		}
	}
	close(keys)
	wg.Wait()
}

// recordFromAttached decodes caption values out of attached object metadata.
func recordFromAttached(attached map[string]string) (MetadataRecord, bool) {
	var rec MetadataRecord
	var found bool
	if v, ok := attached[metaTitleKey]; ok {
		if title, err := url.QueryUnescape(v); err == nil {
			rec.Title = title
			found = true
		}
	}
	if v, ok := attached[metaUploaderKey]; ok {
		if name, err := url.QueryUnescape(v); err == nil {
			rec.UploaderName = name
			found = true
		}
	}
	return rec, found
}

// SaveMediaMetadata records caption metadata for an uploaded object. The key
// is derived from the public URL before anything is written.
func (s *service) SaveMediaMetadata(ctx context.Context, req SaveMediaMetadataRequest) (string, error) {
	key, err := s.resolveKey(req.MediaURL)
	if err != nil {
		return "", err
	}

	record := MetadataRecord{
		Title:        req.Title,
		UploaderName: req.UploaderName,
		MediaType:    req.MediaType,
	}
	if err := s.metadata.Write(ctx, map[string]MetadataRecord{key: record}); err != nil {
		return "", fmt.Errorf("failed to save metadata for %s: %w", key, err)
	}

	return key, nil
}

// resolveKey derives the storage key from a public media URL by locating the
// upload-prefix path segment and keeping everything from it on.
func (s *service) resolveKey(mediaURL string) (string, error) {
	segment := strings.TrimSuffix(s.uploadPrefix, "/")
	parts := strings.Split(mediaURL, "/")
	for i, part := range parts {
		if part == segment && i < len(parts)-1 {
			return strings.Join(parts[i:], "/"), nil
		}
	}
	return "", ErrInvalidReference
}
