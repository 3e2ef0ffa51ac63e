// Package metadata provides the stores tracking descriptive metadata for
// uploaded objects, keyed by storage key.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wedshare/album-backend/pkg/album"
)

// DefaultDocumentKey is where the shared metadata document lives in the
// bucket. It sits outside the upload prefix so it never shows up in album
// listings.
const DefaultDocumentKey = ".album/metadata.json"

const (
	defaultWriteAttempts = 3
	defaultRetryDelay    = 100 * time.Millisecond
)

// Document is the shared-document metadata store: a single JSON object
// mapping storage keys to records, persisted through a DocumentStore
// capability. Writes are read-merge-write cycles, never blind overwrites.
// Two writers racing through the cycle can still last-writer-win per
// overlapping key; that is acceptable for best-effort captioning.
type Document struct {
	blobs         album.DocumentStore
	key           string
	writeAttempts int
	retryDelay    time.Duration
}

// DocumentOption is a functional option for configuring a Document store
type DocumentOption func(*Document)

// WithWriteRetry configures write retry behavior. The delay grows linearly
// with the attempt number.
func WithWriteRetry(attempts int, delay time.Duration) DocumentOption {
	return func(d *Document) {
		d.writeAttempts = attempts
		d.retryDelay = delay
	}
}

// NewDocument creates a shared-document metadata store persisted under the
// given document key. An empty key falls back to DefaultDocumentKey.
func NewDocument(blobs album.DocumentStore, key string, opts ...DocumentOption) *Document {
	if key == "" {
		key = DefaultDocumentKey
	}
	d := &Document{
		blobs:         blobs,
		key:           key,
		writeAttempts: defaultWriteAttempts,
		retryDelay:    defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Read returns the current mapping. A missing or malformed document yields
// an empty mapping, not an error; only transport failures propagate.
func (d *Document) Read(ctx context.Context) (map[string]album.MetadataRecord, error) {
	data, err := d.blobs.GetDocument(ctx, d.key)
	if err != nil {
		if errors.Is(err, album.ErrDocumentNotFound) {
			return map[string]album.MetadataRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read metadata document: %w", err)
	}

	entries := make(map[string]album.MetadataRecord)
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.WarnContext(ctx, "metadata document is malformed, treating as empty",
			"document", d.key, "error", err)
		return map[string]album.MetadataRecord{}, nil
	}
	return entries, nil
}

// Write merges the given entries into the stored document. Transient
// failures are retried with linearly increasing backoff; after the last
// attempt the error wraps ErrMetadataWriteExhausted.
func (d *Document) Write(ctx context.Context, entries map[string]album.MetadataRecord) error {
	var lastErr error
	for attempt := 1; attempt <= d.writeAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * d.retryDelay):
			}
		}
		if lastErr = d.writeOnce(ctx, entries); lastErr == nil {
			return nil
		}
		slog.WarnContext(ctx, "metadata document write failed",
			"document", d.key, "attempt", attempt, "error", lastErr)
	}
	return fmt.Errorf("%w: %v", album.ErrMetadataWriteExhausted, lastErr)
}

// writeOnce performs one read-merge-write cycle. New entries win per
// overlapping key; everything else in the document is preserved.
func (d *Document) writeOnce(ctx context.Context, entries map[string]album.MetadataRecord) error {
	current, err := d.Read(ctx)
	if err != nil {
		return err
	}
	for key, record := range entries {
		current[key] = record
	}

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata document: %w", err)
	}
	return d.blobs.PutDocument(ctx, d.key, data)
}
