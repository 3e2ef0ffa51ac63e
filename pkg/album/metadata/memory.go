package metadata

import (
	"context"
	"sync"

	"github.com/wedshare/album-backend/pkg/album"
)

// Memory is an in-memory metadata store for tests and local development.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]album.MetadataRecord
}

// NewMemory creates a new in-memory metadata store
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]album.MetadataRecord),
	}
}

// Read returns a copy of the current mapping
func (m *Memory) Read(ctx context.Context) (map[string]album.MetadataRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make(map[string]album.MetadataRecord, len(m.entries))
	for key, record := range m.entries {
		entries[key] = record
	}
	return entries, nil
}

// Write merges the given entries into the mapping
func (m *Memory) Write(ctx context.Context, entries map[string]album.MetadataRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, record := range entries {
		m.entries[key] = record
	}
	return nil
}
