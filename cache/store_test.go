package cache

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-catalog-browser/catalog"
)

func samplePage(n, total int) catalog.Page {
	records := make([]catalog.Resource, n)
	for i := range records {
		records[i] = catalog.Resource{
			ID:       fmt.Sprintf("r-%d", i),
			Title:    fmt.Sprintf("Resource %d", i),
			URL:      "https://example.com",
			Category: "ai",
			Tags:     []string{"trending"},
		}
	}
	return catalog.Page{Records: records, TotalCount: total}
}

func TestMemoryStore_GetPutClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	keys := NewDefaultKeyBuilder()
	key := keys.BuildKey(1, catalog.CategoryFilter("ai"))

	_, ok := store.Get(ctx, key)
	assert.False(t, ok, "empty store must miss")

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Put(ctx, key, NewEntry("ignored", samplePage(10, 25), now)))

	entry, ok := store.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, key, entry.Key, "Put stamps the entry with its key")
	assert.Equal(t, 25, entry.TotalCount)
	assert.Len(t, entry.Records, 10)
	assert.Equal(t, now, entry.InsertedAt)
	assert.Equal(t, 25, entry.Page().TotalCount)

	require.NoError(t, store.Put(ctx, key, NewEntry(key, samplePage(3, 3), now)))
	entry, _ = store.Get(ctx, key)
	assert.Len(t, entry.Records, 3, "last writer wins")
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Clear(ctx))
	_, ok = store.Get(ctx, key)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_ConcurrentPuts(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	keys := NewDefaultKeyBuilder()

	var wg sync.WaitGroup
	for page := 1; page <= 50; page++ {
		wg.Add(2)
		for range 2 {
			go func(page int) {
				defer wg.Done()
				key := keys.BuildKey(page, catalog.TagFilter("mac"))
				_ = store.Put(ctx, key, NewEntry(key, samplePage(1, 50), time.Now()))
			}(page)
		}
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
}

func TestStoreConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultStoreConfig().Validate())
	assert.Error(t, StoreConfig{}.Validate())
	assert.Error(t, StoreConfig{Backend: "memcache"}.Validate())
	assert.Error(t, StoreConfig{Backend: BackendRedis}.Validate(), "redis requires an address")
}

func TestNewStore_Memory(t *testing.T) {
	store, err := NewStore(context.Background(), DefaultStoreConfig(), zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
}

func TestRedisStore_Integration(t *testing.T) {
	addr := os.Getenv("CATALOG_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CATALOG_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	namespace := fmt.Sprintf("catalog-test-%d", time.Now().UnixNano())
	store, err := NewRedisStore(ctx, RedisConfig{Addr: addr, Namespace: namespace}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	keys := NewDefaultKeyBuilder()
	k1 := keys.BuildKey(1, catalog.CategoryFilter("ai"))
	k2 := keys.BuildKey(2, catalog.CategoryFilter("ai"))

	_, ok := store.Get(ctx, k1)
	assert.False(t, ok)

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, store.Put(ctx, k1, NewEntry(k1, samplePage(10, 25), now)))
	require.NoError(t, store.Put(ctx, k2, NewEntry(k2, samplePage(10, 25), now)))

	entry, ok := store.Get(ctx, k1)
	require.True(t, ok)
	assert.Equal(t, 25, entry.TotalCount)
	assert.Len(t, entry.Records, 10)
	assert.Equal(t, "Resource 0", entry.Records[0].Title)
	assert.True(t, now.Equal(entry.InsertedAt))

	require.NoError(t, store.Clear(ctx))
	_, ok = store.Get(ctx, k1)
	assert.False(t, ok)
	_, ok = store.Get(ctx, k2)
	assert.False(t, ok)
}

func TestRedisStore_UnreachableIsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	store := NewRedisStoreWithClient(client, "", zerolog.Nop())
	t.Cleanup(func() { _ = store.Close() })

	_, ok := store.Get(context.Background(), Key("page::1::category::all"))
	assert.False(t, ok, "backend errors are reported as a miss")
	assert.Error(t, store.Put(context.Background(), Key("k"), Entry{}))
}
