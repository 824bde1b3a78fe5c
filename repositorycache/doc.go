// Package repositorycache provides a cached decorator for catalog backends.
//
// # Overview
//
// CachedService wraps any catalog.Service and intercepts read operations to serve
// them from a time-bounded cache.CacheService, while write operations pass through
// to the wrapped backend. It is the search cache that sits in front of a remote
// catalog: query results and title suggestions live for the configured TTL (five
// minutes by default) and are dropped wholesale after any successful write.
//
// # Basic Usage
//
//	base := postgrest.New(cfg.Source.PostgREST, logger)
//	searchCache, _ := cacheinfra.NewSturdycService(cacheinfra.DefaultConfig())
//
//	cached := repositorycache.New(base, searchCache, repositorycache.WithLogger(logger))
//
//	page, err := cached.Fetch(ctx, catalog.Query{Page: 1, PageSize: 10})
//
// # Cached vs Pass-through Operations
//
// Cached:
//   - Fetch, keyed by a hash of the normalized query
//   - FetchAll, keyed by a hash of the normalized filters
//   - Suggest, keyed by limit and lowercased term
//
// Pass-through, followed by a full cache clear on success:
//   - Create, Update, Delete
//
// # Errors
//
// Errors from the base backend are returned unchanged and never cached, which
// includes *catalog.RangeError for pages past the end. A failed cache clear after
// a successful write is logged and does not fail the write.
package repositorycache
