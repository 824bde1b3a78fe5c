package browser

import (
	"context"
	"sync"

	"github.com/goliatone/go-catalog-browser/cache"
)

// epochStore wraps a cache.Store and drops writes for fetches that were issued
// before the most recent Clear. A fetch in flight across a mutation would
// otherwise repopulate the store with pre-mutation data.
type epochStore struct {
	cache.Store

	mu    sync.RWMutex
	epoch uint64
}

func newEpochStore(store cache.Store) *epochStore {
	return &epochStore{Store: store}
}

// Epoch returns the current clear count. Capture it before fetching.
func (s *epochStore) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// PutSince writes entry only if no Clear happened since epoch was captured.
func (s *epochStore) PutSince(ctx context.Context, epoch uint64, key cache.Key, entry cache.Entry) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if epoch != s.epoch {
		return false, nil
	}
	return true, s.Store.Put(ctx, key, entry)
}

// RunSince runs fn only if no Clear happened since epoch was captured. fn
// cannot interleave with ClearWith.
func (s *epochStore) RunSince(epoch uint64, fn func()) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if epoch != s.epoch {
		return false
	}
	fn()
	return true
}

func (s *epochStore) Clear(ctx context.Context) error {
	return s.ClearWith(ctx, nil)
}

// ClearWith clears the store and runs reset, if set, under the same lock.
func (s *epochStore) ClearWith(ctx context.Context, reset func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	if reset != nil {
		reset()
	}
	return s.Store.Clear(ctx)
}
