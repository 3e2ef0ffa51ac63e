// Package memory provides an in-memory object store for tests and local
// development.
package memory

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wedshare/album-backend/pkg/album"
)

type object struct {
	data         []byte
	contentType  string
	lastModified time.Time
	metadata     map[string]string
}

// Backend is an in-memory implementation of the album.ObjectStore and
// album.DocumentStore interfaces.
type Backend struct {
	mu        sync.RWMutex
	objects   map[string]object
	documents map[string][]byte
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects:   make(map[string]object),
		documents: make(map[string][]byte),
	}
}

// SeedObject places an object with an explicit last-modified timestamp and
// attached metadata, without going through an upload.
func (b *Backend) SeedObject(key string, data []byte, lastModified time.Time, metadata map[string]string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = object{
		data:         data,
		contentType:  "application/octet-stream",
		lastModified: lastModified,
		metadata:     metadata,
	}
}

// GetUploadURL returns a synthetic upload URL. The in-memory backend cannot
// accept writes through it; tests upload directly instead.
func (b *Backend) GetUploadURL(ctx context.Context, objectKey string, params album.UploadURLParams) (string, error) {
	return fmt.Sprintf("memory://upload/%s", objectKey), nil
}

// List returns all objects under the given prefix, ordered by key
func (b *Backend) List(ctx context.Context, prefix string) ([]album.ObjectInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var infos []album.ObjectInfo
	for key, obj := range b.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		infos = append(infos, album.ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.data)),
			LastModified: obj.lastModified,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

// GetObjectMeta retrieves metadata for an object in memory
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*album.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[objectKey]
	if !exists {
		return nil, album.ErrObjectNotFound
	}

	metadata := make(map[string]string, len(obj.metadata))
	for k, v := range obj.metadata {
		metadata[k] = v
	}

	return &album.ObjectMeta{
		Key:          objectKey,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		LastModified: obj.lastModified,
		Metadata:     metadata,
	}, nil
}

// Upload uploads content directly
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[objectKey] = object{
		data:         data,
		contentType:  "application/octet-stream",
		lastModified: time.Now(),
	}
	return nil
}

// ObjectURL returns a synthetic public URL for an object key
func (b *Backend) ObjectURL(objectKey string) string {
	return fmt.Sprintf("memory://%s", objectKey)
}

// GetDocument fetches a raw document
func (b *Backend) GetDocument(ctx context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.documents[key]
	if !exists {
		return nil, album.ErrDocumentNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// PutDocument replaces a raw document
func (b *Backend) PutDocument(ctx context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	b.documents[key] = stored
	return nil
}
