package browser

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-catalog-browser/cache"
	"github.com/goliatone/go-catalog-browser/catalog"
	"github.com/goliatone/go-catalog-browser/pagination"
)

// DefaultItemsPerPage is the page size used when none is configured.
const DefaultItemsPerPage = 10

var (
	// ErrClosed is returned by intents issued after Close.
	ErrClosed = errors.New("browser: closed")
	// ErrReadOnly is returned by mutations when no catalog.Mutator is available.
	ErrReadOnly = errors.New("browser: no mutator configured")
)

// View is the read model handed to the renderer.
type View struct {
	Records      []catalog.Resource
	Filter       catalog.Filter
	CurrentPage  int
	TotalPages   int
	TotalCount   int
	ItemsPerPage int
	IsLoading    bool
	Status       Status
	Err          error
	HasNext      bool
	HasPrev      bool
}

// Observer receives a fresh View after every visible state change.
type Observer func(View)

// Option configures a Browser.
type Option func(*Browser)

// WithItemsPerPage sets the page size. Non-positive values are ignored.
func WithItemsPerPage(n int) Option {
	return func(b *Browser) {
		if n > 0 {
			b.itemsPerPage = n
		}
	}
}

// WithStore sets the browsing store. The default is an in-process cache.MemoryStore.
func WithStore(store cache.Store) Option {
	return func(b *Browser) {
		if store != nil {
			b.rawStore = store
		}
	}
}

// WithKeyBuilder sets how store keys are derived from page and filter.
func WithKeyBuilder(keys cache.KeyBuilder) Option {
	return func(b *Browser) {
		if keys != nil {
			b.keys = keys
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(b *Browser) {
		b.logger = logger
	}
}

// WithObserver registers the renderer callback.
func WithObserver(fn Observer) Option {
	return func(b *Browser) {
		b.observer = fn
	}
}

// WithMutator sets the write side used by Create, Update and Delete. When unset,
// the query service is used if it also implements catalog.Mutator.
func WithMutator(m catalog.Mutator) Option {
	return func(b *Browser) {
		b.mutator = m
	}
}

// WithPrefetch enables or disables next-page prefetching. Enabled by default.
func WithPrefetch(enabled bool) Option {
	return func(b *Browser) {
		b.prefetchEnabled = enabled
	}
}

func WithPrefetchTimeout(d time.Duration) Option {
	return func(b *Browser) {
		if d > 0 {
			b.prefetchTimeout = d
		}
	}
}

// WithClock sets the time source used to stamp store entries.
func WithClock(now func() time.Time) Option {
	return func(b *Browser) {
		if now != nil {
			b.now = now
		}
	}
}

// WithRand sets the source of Random picks. fn must return a value in [0, n).
func WithRand(fn func(n int) int) Option {
	return func(b *Browser) {
		if fn != nil {
			b.randIntN = fn
		}
	}
}

// Browser composes the navigator, the fetch controller and the prefetcher into
// the browsing session consumed by a renderer. Intent methods block until the
// resulting load settles, but never hold a lock across a query, so a newer
// intent may supersede an older one still in flight.
type Browser struct {
	source          catalog.QueryService
	mutator         catalog.Mutator
	rawStore        cache.Store
	keys            cache.KeyBuilder
	itemsPerPage    int
	prefetchEnabled bool
	prefetchTimeout time.Duration
	now             func() time.Time
	randIntN        func(n int) int
	observer        Observer
	logger          zerolog.Logger

	store    *epochStore
	ctrl     *Controller
	prefetch *Prefetcher
	memo     *xsync.MapOf[catalog.Filter, []catalog.Resource]

	mu     sync.Mutex
	nav    *Navigator
	closed bool
}

// New creates a Browser over source.
func New(source catalog.QueryService, opts ...Option) *Browser {
	b := &Browser{
		source:          source,
		itemsPerPage:    DefaultItemsPerPage,
		prefetchEnabled: true,
		prefetchTimeout: DefaultPrefetchTimeout,
		now:             time.Now,
		randIntN:        rand.IntN,
		logger:          zerolog.Nop(),
		memo:            xsync.NewMapOf[catalog.Filter, []catalog.Resource](),
	}
	if m, ok := source.(catalog.Mutator); ok {
		b.mutator = m
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rawStore == nil {
		b.rawStore = cache.NewMemoryStore()
	}
	if b.keys == nil {
		b.keys = cache.NewDefaultKeyBuilder()
	}
	b.logger = b.logger.With().Str("component", "Browser").Logger()

	b.store = newEpochStore(b.rawStore)
	b.nav = NewNavigator(b.itemsPerPage)
	b.ctrl = newController(source, b.store, b.keys, b.itemsPerPage, b.now, b.logger)
	b.ctrl.onLoading = b.emit
	b.prefetch = newPrefetcher(source, b.store, b.keys, b.itemsPerPage, b.prefetchTimeout, b.now, b.logger)
	return b
}

// request is one issued load of the visible page.
type request struct {
	gen    uint64
	page   int
	filter catalog.Filter
}

// View returns the current read model.
func (b *Browser) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewLocked()
}

func (b *Browser) viewLocked() View {
	snap := b.ctrl.Snapshot()
	state := b.nav.State()
	return View{
		Records:      snap.Records,
		Filter:       b.nav.Filter(),
		CurrentPage:  state.CurrentPage,
		TotalPages:   state.TotalPages(),
		TotalCount:   state.TotalCount,
		ItemsPerPage: state.ItemsPerPage,
		IsLoading:    snap.Loading,
		Status:       snap.Status,
		Err:          snap.Err,
		HasNext:      state.HasNext(),
		HasPrev:      state.HasPrev(),
	}
}

func (b *Browser) emit() {
	if b.observer == nil {
		return
	}
	b.observer(b.View())
}

// Start loads the first page of the default filter.
func (b *Browser) Start(ctx context.Context) (View, error) {
	return b.transition(ctx, func(*Navigator) bool { return true })
}

// Reload loads the current page again. Use it to retry after a failure.
func (b *Browser) Reload(ctx context.Context) (View, error) {
	return b.transition(ctx, func(*Navigator) bool { return true })
}

// Next moves to the following page. It is a no-op on the last page.
func (b *Browser) Next(ctx context.Context) (View, error) {
	return b.transition(ctx, (*Navigator).Next)
}

// Prev moves to the previous page. It is a no-op on the first page.
func (b *Browser) Prev(ctx context.Context) (View, error) {
	return b.transition(ctx, (*Navigator).Prev)
}

// GoToPage moves to page n, clamped into the known range.
func (b *Browser) GoToPage(ctx context.Context, n int) (View, error) {
	return b.transition(ctx, func(nav *Navigator) bool {
		nav.GoTo(n)
		return true
	})
}

// SelectCategory switches to category id and resets to page 1. An empty id
// selects every category.
func (b *Browser) SelectCategory(ctx context.Context, id string) (View, error) {
	return b.transition(ctx, func(nav *Navigator) bool {
		nav.SelectCategory(id)
		return true
	})
}

// SelectTag switches to tag and resets to page 1.
func (b *Browser) SelectTag(ctx context.Context, tag string) (View, error) {
	return b.transition(ctx, func(nav *Navigator) bool {
		nav.SelectTag(tag)
		return true
	})
}

// transition applies move to the navigator and, if it reports a change, loads
// the resulting page.
func (b *Browser) transition(ctx context.Context, move func(*Navigator) bool) (View, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return View{}, ErrClosed
	}
	if !move(b.nav) {
		v := b.viewLocked()
		b.mu.Unlock()
		return v, nil
	}
	req := b.issueLocked()
	b.mu.Unlock()

	return b.run(ctx, req, true)
}

func (b *Browser) issueLocked() request {
	return request{
		gen:    b.ctrl.Issue(),
		page:   b.nav.State().CurrentPage,
		filter: b.nav.Filter(),
	}
}

// run loads req and folds the result into the navigator. When reconcile is set
// and the resolved total leaves the page out of range, the page is clamped and
// loaded once more.
func (b *Browser) run(ctx context.Context, req request, reconcile bool) (View, error) {
	res, err := b.ctrl.Load(ctx, req.page, req.filter, req.gen)

	b.mu.Lock()
	if res.Stale || req.gen != b.ctrl.Latest() {
		v := b.viewLocked()
		b.mu.Unlock()
		return v, nil
	}
	if err != nil {
		b.nav.SetTotal(b.ctrl.Snapshot().TotalCount)
		v := b.viewLocked()
		b.mu.Unlock()
		b.emit()
		return v, err
	}

	b.nav.SetTotal(res.TotalCount)
	if reconcile && b.nav.OutOfRange() {
		b.nav.Clamp()
		next := b.issueLocked()
		b.mu.Unlock()
		b.logger.Debug().
			Int("from", req.page).
			Int("to", next.page).
			Int("total", res.TotalCount).
			Msg("page out of range, reloading clamped page")
		return b.run(ctx, next, false)
	}
	v := b.viewLocked()
	b.mu.Unlock()

	if b.prefetchEnabled {
		b.prefetch.Schedule(req.page, pagination.TotalPages(res.TotalCount, b.itemsPerPage), req.filter)
	}
	b.emit()
	return v, nil
}

// Random picks one record uniformly from every record matching the active
// filter. The full list is memoized per filter until the next mutation.
func (b *Browser) Random(ctx context.Context) (catalog.Resource, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return catalog.Resource{}, ErrClosed
	}
	filter := b.nav.Filter()
	b.mu.Unlock()

	records, ok := b.memo.Load(filter)
	if !ok {
		epoch := b.store.Epoch()
		fetched, err := b.source.FetchAll(ctx, filter.Filters())
		if err != nil {
			return catalog.Resource{}, fmt.Errorf("fetch all for %s: %w", filter, err)
		}
		records = fetched
		b.store.RunSince(epoch, func() { b.memo.Store(filter, records) })
	}

	if len(records) == 0 {
		return catalog.Resource{}, catalog.ErrNotFound
	}
	return records[b.randIntN(len(records))], nil
}

// Create adds r through the mutator and invalidates every cached page.
func (b *Browser) Create(ctx context.Context, r catalog.Resource) (catalog.Resource, error) {
	if b.mutator == nil {
		return catalog.Resource{}, ErrReadOnly
	}
	created, err := b.mutator.Create(ctx, r)
	if err != nil {
		return catalog.Resource{}, err
	}
	return created, b.Invalidate(ctx)
}

// Update replaces the record id through the mutator and invalidates every cached page.
func (b *Browser) Update(ctx context.Context, id string, r catalog.Resource) (catalog.Resource, error) {
	if b.mutator == nil {
		return catalog.Resource{}, ErrReadOnly
	}
	updated, err := b.mutator.Update(ctx, id, r)
	if err != nil {
		return catalog.Resource{}, err
	}
	return updated, b.Invalidate(ctx)
}

// Delete removes the record id through the mutator and invalidates every cached page.
func (b *Browser) Delete(ctx context.Context, id string) error {
	if b.mutator == nil {
		return ErrReadOnly
	}
	if err := b.mutator.Delete(ctx, id); err != nil {
		return err
	}
	return b.Invalidate(ctx)
}

// Invalidate clears the browsing store and the random-pick memo. Loads and
// prefetches already in flight will not write their results back.
func (b *Browser) Invalidate(ctx context.Context) error {
	if err := b.store.ClearWith(ctx, b.memo.Clear); err != nil {
		return fmt.Errorf("clear browsing store: %w", err)
	}
	b.logger.Debug().Msg("browsing store cleared")
	return nil
}

// Wait blocks until background prefetches have settled.
func (b *Browser) Wait() {
	b.prefetch.Wait()
}

// Close stops prefetching. Intents issued afterwards fail with ErrClosed.
func (b *Browser) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.prefetch.Close()
	return nil
}
