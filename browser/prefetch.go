package browser

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-catalog-browser/cache"
	"github.com/goliatone/go-catalog-browser/catalog"
)

// DefaultPrefetchTimeout bounds one background prefetch.
const DefaultPrefetchTimeout = 10 * time.Second

// Prefetcher warms the store with the page after the one just resolved.
// It never touches visible state and swallows every failure.
type Prefetcher struct {
	source       catalog.QueryService
	store        *epochStore
	keys         cache.KeyBuilder
	itemsPerPage int
	timeout      time.Duration
	now          func() time.Time
	logger       zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

func newPrefetcher(source catalog.QueryService, store *epochStore, keys cache.KeyBuilder, itemsPerPage int, timeout time.Duration, now func() time.Time, logger zerolog.Logger) *Prefetcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Prefetcher{
		source:       source,
		store:        store,
		keys:         keys,
		itemsPerPage: itemsPerPage,
		timeout:      timeout,
		now:          now,
		logger:       logger.With().Str("component", "PrefetchScheduler").Logger(),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Schedule fetches page+1 under filter in the background unless it is past
// totalPages or already stored. It reports whether a fetch was started.
// Concurrent prefetches of the same key are not deduplicated.
func (p *Prefetcher) Schedule(page, totalPages int, filter catalog.Filter) bool {
	next := page + 1
	if next > totalPages {
		return false
	}

	key := p.keys.BuildKey(next, filter)
	if _, ok := p.store.Get(p.ctx, key); ok {
		return false
	}

	epoch := p.store.Epoch()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.fetch(key, next, filter, epoch)
	}()
	return true
}

func (p *Prefetcher) fetch(key cache.Key, page int, filter catalog.Filter, epoch uint64) {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	log := p.logger.With().Str("key", key.String()).Logger()

	res, err := p.source.Fetch(ctx, catalog.Query{Page: page, PageSize: p.itemsPerPage, Filters: filter.Filters()})
	if err != nil {
		log.Warn().Err(err).Msg("prefetch failed")
		return
	}

	stored, err := p.store.PutSince(ctx, epoch, key, cache.NewEntry(key, res, p.now()))
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("prefetch store failed")
	case !stored:
		log.Debug().Msg("prefetch dropped, store cleared meanwhile")
	default:
		log.Debug().Int("records", len(res.Records)).Msg("prefetched")
	}
}

// Wait blocks until every scheduled prefetch has settled.
func (p *Prefetcher) Wait() {
	p.wg.Wait()
}

// Close cancels pending prefetches and waits for them to return.
func (p *Prefetcher) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}
