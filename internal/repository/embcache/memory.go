package embcache

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/candidex/internal/db"
)

// MemoryStore is an in-process cache backend. Entries never expire.
type MemoryStore struct {
	entries sync.Map // key -> []byte
}

// NewMemoryStore creates an empty in-process cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the stored bytes or db.ErrKeyNotFound.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.entries.Load(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v.([]byte), nil
}

// SetNX keeps the first value written for key. ttl is ignored.
func (m *MemoryStore) SetNX(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	_, loaded := m.entries.LoadOrStore(key, value)
	return !loaded, nil
}

// Len counts cached entries.
func (m *MemoryStore) Len() int {
	n := 0
	m.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
