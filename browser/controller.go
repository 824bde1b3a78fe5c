package browser

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-catalog-browser/cache"
	"github.com/goliatone/go-catalog-browser/catalog"
)

// Status is the state of the visible load.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusResolved
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusResolved:
		return "resolved"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Result describes how one Load settled.
type Result struct {
	Generation uint64
	Key        cache.Key
	Page       int
	Filter     catalog.Filter
	Records    []catalog.Resource
	TotalCount int

	// FromCache is set when the store answered and the query service was not called.
	FromCache bool
	// RangeExhausted is set when the query service reported the page as past the end.
	RangeExhausted bool
	// Stale is set when a newer generation was issued before this one settled.
	// Stale results never reach the visible state.
	Stale bool
}

// Snapshot is the visible state of a Controller.
type Snapshot struct {
	Status     Status
	Loading    bool
	Records    []catalog.Resource
	TotalCount int
	Page       int
	Filter     catalog.Filter
	Err        error
}

// Controller runs generation-tagged loads of the visible page. Only the latest
// issued generation may change the visible state or the loading flag.
type Controller struct {
	source       catalog.QueryService
	store        *epochStore
	keys         cache.KeyBuilder
	itemsPerPage int
	now          func() time.Time
	logger       zerolog.Logger

	mu         sync.Mutex
	generation uint64
	loadingGen uint64
	status     Status
	records    []catalog.Resource
	total      int
	page       int
	filter     catalog.Filter
	err        error
	onLoading  func()
}

func newController(source catalog.QueryService, store *epochStore, keys cache.KeyBuilder, itemsPerPage int, now func() time.Time, logger zerolog.Logger) *Controller {
	return &Controller{
		source:       source,
		store:        store,
		keys:         keys,
		itemsPerPage: itemsPerPage,
		now:          now,
		logger:       logger.With().Str("component", "FetchController").Logger(),
		filter:       catalog.DefaultFilter(),
	}
}

// Issue returns a new generation. Every generation issued earlier becomes stale.
func (c *Controller) Issue() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return c.generation
}

// Latest returns the most recently issued generation.
func (c *Controller) Latest() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Snapshot returns the visible state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Status:     c.status,
		Loading:    c.loadingLocked(),
		Records:    c.records,
		TotalCount: c.total,
		Page:       c.page,
		Filter:     c.filter,
		Err:        c.err,
	}
}

// IsLoading reports whether the latest generation is waiting on the query service.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadingLocked()
}

func (c *Controller) loadingLocked() bool {
	return c.loadingGen != 0 && c.loadingGen == c.generation
}

// Load resolves page under filter for generation gen.
//
// A store hit resolves without raising the loading flag. A miss calls the query
// service and caches the page. A range-exhausted answer resolves as an empty page
// and is not cached. Only a failure of the latest generation is returned as an
// error; stale results come back with Stale set and a nil error.
func (c *Controller) Load(ctx context.Context, page int, filter catalog.Filter, gen uint64) (Result, error) {
	key := c.keys.BuildKey(page, filter)
	res := Result{Generation: gen, Key: key, Page: page, Filter: filter}

	if entry, ok := c.store.Get(ctx, key); ok {
		res.FromCache = true
		res.Records = entry.Records
		res.TotalCount = entry.TotalCount
		res.Stale = !c.resolve(res)
		c.logger.Debug().Str("key", key.String()).Uint64("generation", gen).Bool("stale", res.Stale).Msg("cache hit")
		return res, nil
	}

	epoch := c.store.Epoch()
	c.markLoading(gen)
	c.logger.Debug().Str("key", key.String()).Uint64("generation", gen).Msg("cache miss")

	p, err := c.source.Fetch(ctx, catalog.Query{Page: page, PageSize: c.itemsPerPage, Filters: filter.Filters()})
	if err != nil {
		if total, known, ok := catalog.RangeTotal(err); ok {
			res.RangeExhausted = true
			res.Records = []catalog.Resource{}
			res.TotalCount = c.rangeTotal(filter, total, known)
			res.Stale = !c.resolve(res)
			c.logger.Debug().Str("key", key.String()).Int("total", res.TotalCount).Msg("range exhausted, resolved as empty page")
			return res, nil
		}
		if !c.fail(gen, filter, page, err) {
			res.Stale = true
			c.logger.Debug().Err(err).Uint64("generation", gen).Msg("stale load failed, discarded")
			return res, nil
		}
		c.logger.Error().Err(err).Str("key", key.String()).Msg("load failed")
		return res, err
	}

	if _, putErr := c.store.PutSince(ctx, epoch, key, cache.NewEntry(key, p, c.now())); putErr != nil {
		c.logger.Warn().Err(putErr).Str("key", key.String()).Msg("failed to store page")
	}

	res.Records = p.Records
	res.TotalCount = p.TotalCount
	res.Stale = !c.resolve(res)
	if res.Stale {
		c.logger.Debug().Uint64("generation", gen).Str("key", key.String()).Msg("stale response discarded")
	}
	return res, nil
}

func (c *Controller) markLoading(gen uint64) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.loadingGen = gen
	c.status = StatusLoading
	notify := c.onLoading
	c.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// resolve applies res to the visible state if it is still current.
func (c *Controller) resolve(res Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settleLocked(res.Generation)
	if res.Generation != c.generation {
		return false
	}
	c.status = StatusResolved
	c.records = res.Records
	c.total = res.TotalCount
	c.page = res.Page
	c.filter = res.Filter
	c.err = nil
	return true
}

// fail records err as the visible failure if gen is still current.
// Records are cleared. The last known total is kept only while the filter
// is unchanged.
func (c *Controller) fail(gen uint64, filter catalog.Filter, page int, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settleLocked(gen)
	if gen != c.generation {
		return false
	}
	if filter != c.filter {
		c.total = 0
	}
	c.status = StatusFailed
	c.records = nil
	c.page = page
	c.filter = filter
	c.err = err
	return true
}

func (c *Controller) settleLocked(gen uint64) {
	if c.loadingGen == gen {
		c.loadingGen = 0
	}
}

// rangeTotal picks the total for a range-exhausted answer: the backend's if it
// sent one, otherwise the last known total for the same filter, otherwise zero.
func (c *Controller) rangeTotal(filter catalog.Filter, total int, known bool) int {
	if known {
		return total
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusIdle && c.filter == filter {
		return c.total
	}
	return 0
}
