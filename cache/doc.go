// Package cache provides the two caches of the catalog browser and the keys they use.
//
// # Overview
//
// The package exports two independent caching contracts:
//
//   - Store: the browsing cache. It memoizes one Entry per (page, filter) pair and
//     receives prefetched pages. Entries never expire; they are valid until Clear,
//     which callers invoke after any successful write against the catalog backend.
//   - CacheService: a read-through TTL cache placed in front of the backend for
//     query results and search suggestions. Its entries expire after a short TTL.
//
// The two must not be conflated: a Store hit never consults CacheService, and a
// TTL expiry never removes a Store entry.
//
// # Keys
//
// KeyBuilder derives a Key from a page number and a catalog.Filter:
//
//	keys := cache.NewDefaultKeyBuilder()
//	key := keys.BuildKey(2, catalog.CategoryFilter("ai"))
//	// page::2::category::ai
//
// Filter values are query-escaped, so a value containing KeySeparator cannot
// produce the key of a different filter.
//
// # Backends
//
// MemoryStore keeps entries in a concurrent map and is the default, one per
// browsing session. RedisStore shares entries through Redis under a namespace and
// encodes them with msgpack; its Get reports backend errors as misses.
//
//	store, err := cache.NewStore(ctx, cache.StoreConfig{Backend: cache.BackendRedis, Redis: redisCfg}, logger)
//
// NewCacheService returns the sturdyc backed CacheService; use the generic
// GetOrFetch helper to keep call sites typed:
//
//	page, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) (catalog.Page, error) {
//		return backend.Fetch(ctx, q)
//	})
package cache
