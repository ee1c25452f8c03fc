// Package registry tracks the documents known to a taxlens session.
package registry

import (
	"errors"
	"sort"
	"sync"

	"github.com/ppiankov/taxlens/internal/model"
)

// ErrNotFound is returned when a file id has no record
var ErrNotFound = errors.New("file not registered")

// Registry resolves file ids to file metadata
type Registry interface {
	Lookup(fileID string) (model.FileMeta, bool)
}

// Memory is a concurrency-safe in-memory registry
type Memory struct {
	mu    sync.RWMutex
	files map[string]model.FileMeta
}

// NewMemory creates an empty registry
func NewMemory() *Memory {
	return &Memory{files: make(map[string]model.FileMeta)}
}

// Register adds or replaces a file record
func (m *Memory) Register(fileID string, meta model.FileMeta) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[fileID] = meta
}

// Lookup returns the record for a file id. A nil registry knows no files.
func (m *Memory) Lookup(fileID string) (model.FileMeta, bool) {
	if m == nil {
		return model.FileMeta{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	meta, ok := m.files[fileID]
	return meta, ok
}

// LookupOrRegister returns the existing record for fileID, or stores meta
// and returns it. The bool reports whether the record already existed.
func (m *Memory) LookupOrRegister(fileID string, meta model.FileMeta) (model.FileMeta, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.files[fileID]; ok {
		return existing, true
	}
	m.files[fileID] = meta
	return meta, false
}

// MarkAnalyzed flags a file as analyzed so later runs can spot resubmissions
func (m *Memory) MarkAnalyzed(fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	meta, ok := m.files[fileID]
	if !ok {
		return ErrNotFound
	}
	meta.Analyzed = true
	m.files[fileID] = meta
	return nil
}

// IDs returns all registered file ids in sorted order
func (m *Memory) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.files))
	for id := range m.files {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered files
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
