package cache

import (
	"context"
	"time"

	"github.com/goliatone/go-catalog-browser/catalog"
)

// Entry is one memoized page. Entries are value objects: callers insert whole
// entries and never modify one after it is stored.
type Entry struct {
	Key        Key                `json:"key" msgpack:"key"`
	Records    []catalog.Resource `json:"records" msgpack:"records"`
	TotalCount int                `json:"total_count" msgpack:"total_count"`
	InsertedAt time.Time          `json:"inserted_at" msgpack:"inserted_at"`
}

// NewEntry builds an entry from a fetched page.
func NewEntry(key Key, page catalog.Page, now time.Time) Entry {
	return Entry{
		Key:        key,
		Records:    page.Records,
		TotalCount: page.TotalCount,
		InsertedAt: now,
	}
}

// Page returns the catalog page held by the entry.
func (e Entry) Page() catalog.Page {
	return catalog.Page{Records: e.Records, TotalCount: e.TotalCount}
}

// Store is the browsing cache: page memoization and prefetch storage.
//
// Entries do not expire; they stay valid until Clear, which must be called after
// every successful write against the catalog backend. Put is last-writer-wins.
// Get never fails: backend problems are reported as a miss.
type Store interface {
	Get(ctx context.Context, key Key) (Entry, bool)
	Put(ctx context.Context, key Key, entry Entry) error
	Clear(ctx context.Context) error
}
