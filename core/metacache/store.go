package metacache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"dirsync/core/models"
)

// Store remembers the last confirmed state of each mirrored path.
type Store interface {
	// Get returns the cached state for path, or nil on a miss.
	Get(ctx context.Context, path string) (*models.FileState, error)
	// Put records state for path.
	Put(ctx context.Context, path string, state models.FileState) error
	// Delete forgets path. Forgetting an unknown path is not an error.
	Delete(ctx context.Context, path string) error
}

// Backend is an ordered byte-string store.
type Backend interface {
	Get(ctx context.Context, key []byte) ([]byte, bool, error)
	Put(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error
}

// entry is the persisted value format.
type entry struct {
	Size uint64 `json:"Size"`
	Time int64  `json:"Time"`
}

// KVStore keeps states as JSON values in a Backend, keyed by path.
type KVStore struct {
	backend Backend
}

// NewKVStore creates a store on top of backend.
func NewKVStore(backend Backend) *KVStore {
	return &KVStore{backend: backend}
}

// Get implements Store.
func (s *KVStore) Get(ctx context.Context, path string) (*models.FileState, error) {
	raw, ok, err := s.backend.Get(ctx, []byte(path))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("decode cache entry %q: %w", path, err)
	}
	return &models.FileState{Size: e.Size, ModifiedAt: e.Time}, nil
}

// Put implements Store.
func (s *KVStore) Put(ctx context.Context, path string, state models.FileState) error {
	raw, err := json.Marshal(entry{Size: state.Size, Time: state.ModifiedAt})
	if err != nil {
		return err
	}
	return s.backend.Put(ctx, []byte(path), raw)
}

// Delete implements Store.
func (s *KVStore) Delete(ctx context.Context, path string) error {
	return s.backend.Delete(ctx, []byte(path))
}

// MemoryStore is a Store kept in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]models.FileState
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]models.FileState)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, path string) (*models.FileState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.entries[path]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, path string, state models.FileState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[path] = state
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, path)
	return nil
}

// Len returns the number of cached paths.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// scoped confines a Store to the keys of one destination.
type scoped struct {
	store  Store
	prefix string
}

// Scoped returns a view of store whose paths are stored under scope, so
// destinations sharing one cache database never see each other's entries.
// The scope is joined to each path with a slash; an empty scope returns
// store itself.
func Scoped(store Store, scope string) Store {
	if scope == "" {
		return store
	}
	return &scoped{store: store, prefix: strings.TrimRight(scope, "/") + "/"}
}

func (s *scoped) Get(ctx context.Context, path string) (*models.FileState, error) {
	return s.store.Get(ctx, s.prefix+path)
}

func (s *scoped) Put(ctx context.Context, path string, state models.FileState) error {
	return s.store.Put(ctx, s.prefix+path, state)
}

func (s *scoped) Delete(ctx context.Context, path string) error {
	return s.store.Delete(ctx, s.prefix+path)
}

var (
	_ Store = (*KVStore)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Store = (*scoped)(nil)
)
