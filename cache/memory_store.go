package cache

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
)

// MemoryStore is the in-process Store, one per browsing session.
// Concurrent Put calls on different keys never contend on a global lock.
type MemoryStore struct {
	entries *xsync.MapOf[Key, Entry]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: xsync.NewMapOf[Key, Entry]()}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key Key) (Entry, bool) {
	return s.entries.Load(key)
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, key Key, entry Entry) error {
	entry.Key = key
	s.entries.Store(key, entry)
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.entries.Clear()
	return nil
}

// Len reports the number of stored entries.
func (s *MemoryStore) Len() int {
	return s.entries.Size()
}
