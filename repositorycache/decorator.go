package repositorycache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-catalog-browser/cache"
	"github.com/goliatone/go-catalog-browser/catalog"
)

// Key prefixes of the entries this decorator writes.
const (
	PrefixFetch    = "fetch"
	PrefixFetchAll = "fetch_all"
	PrefixSuggest  = "suggest"
)

// Interface assertion to ensure CachedService implements catalog.Service
var _ catalog.Service = (*CachedService)(nil)

// CachedService decorates a catalog backend with a read-through TTL cache.
// Reads (Fetch, FetchAll, Suggest) are cached; writes pass through and, on
// success, drop every cached entry.
type CachedService struct {
	base   catalog.Service
	cache  cache.CacheService
	logger zerolog.Logger
}

// Option configures a CachedService.
type Option func(*CachedService)

// WithLogger sets the logger used for invalidation failures and cache diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *CachedService) {
		c.logger = logger
	}
}

// New creates a CachedService that wraps the base backend with caching
func New(base catalog.Service, cacheService cache.CacheService, opts ...Option) *CachedService {
	c := &CachedService{
		base:   base,
		cache:  cacheService,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "CachedService").Logger()
	return c
}

// Fetch retrieves one page, with caching. Range-exhausted and other errors are never cached.
func (c *CachedService) Fetch(ctx context.Context, q catalog.Query) (catalog.Page, error) {
	if err := q.Validate(); err != nil {
		return catalog.Page{}, fmt.Errorf("invalid query: %w", err)
	}
	q.Filters = q.Filters.Normalized()

	key := hashedKey(PrefixFetch, q)
	return cache.GetOrFetch(ctx, c.cache, key, func(ctx context.Context) (catalog.Page, error) {
		c.logger.Debug().Str("key", key).Int("page", q.Page).Msg("search cache miss")
		return c.base.Fetch(ctx, q)
	})
}

// FetchAll retrieves every record matching filters, with caching.
func (c *CachedService) FetchAll(ctx context.Context, filters catalog.Filters) ([]catalog.Resource, error) {
	filters = filters.Normalized()

	key := hashedKey(PrefixFetchAll, filters)
	return cache.GetOrFetch(ctx, c.cache, key, func(ctx context.Context) ([]catalog.Resource, error) {
		return c.base.FetchAll(ctx, filters)
	})
}

// Suggest returns up to limit titles matching term, with caching. A blank term yields no suggestions.
func (c *CachedService) Suggest(ctx context.Context, term string, limit int) ([]string, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = catalog.DefaultSuggestionLimit
	}

	key := strings.Join([]string{PrefixSuggest, fmt.Sprint(limit), term}, cache.KeySeparator)
	return cache.GetOrFetch(ctx, c.cache, key, func(ctx context.Context) ([]string, error) {
		return c.base.Suggest(ctx, term, limit)
	})
}

// Create validates and creates a record. Write operations pass through to the base backend
func (c *CachedService) Create(ctx context.Context, r catalog.Resource) (catalog.Resource, error) {
	if err := r.Validate(); err != nil {
		return catalog.Resource{}, fmt.Errorf("invalid resource: %w", err)
	}
	result, err := c.base.Create(ctx, r)
	if err == nil {
		c.invalidateAfterWrite(ctx, "create")
	}
	return result, err
}

// Update validates and replaces the record identified by id.
func (c *CachedService) Update(ctx context.Context, id string, r catalog.Resource) (catalog.Resource, error) {
	if err := r.Validate(); err != nil {
		return catalog.Resource{}, fmt.Errorf("invalid resource: %w", err)
	}
	result, err := c.base.Update(ctx, id, r)
	if err == nil {
		c.invalidateAfterWrite(ctx, "update")
	}
	return result, err
}

// Delete removes the record identified by id.
func (c *CachedService) Delete(ctx context.Context, id string) error {
	err := c.base.Delete(ctx, id)
	if err == nil {
		c.invalidateAfterWrite(ctx, "delete")
	}
	return err
}

// invalidateAfterWrite drops every cached read. Any write can change totals and
// page contents for every query, and suggestion titles, so nothing is kept.
func (c *CachedService) invalidateAfterWrite(ctx context.Context, op string) {
	if err := c.cache.Clear(ctx); err != nil {
		c.logger.Warn().Err(err).Str("op", op).Msg("failed to clear search cache after write")
		return
	}
	c.logger.Debug().Str("op", op).Msg("search cache cleared after write")
}

// hashedKey builds "<prefix>::<xxhash of the JSON form of v>".
func hashedKey(prefix string, v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Query shapes are plain structs; fall back to their printed form.
		data = []byte(fmt.Sprintf("%#v", v))
	}
	return fmt.Sprintf("%s%s%016x", prefix, cache.KeySeparator, xxhash.Sum64(data))
}
