package di

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-catalog-browser/cache"
	"github.com/goliatone/go-catalog-browser/pkg/config"
	"github.com/goliatone/go-catalog-browser/pkg/testsupport"
)

func TestNewContainerWithDefaults(t *testing.T) {
	container, err := NewContainerWithDefaults(context.Background())
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	defer container.Close()

	if container.Browser() == nil {
		t.Error("Container should have a non-nil browser")
	}
	if container.Service() == nil {
		t.Error("Container should have a non-nil cached service")
	}
	if container.CacheService() == nil {
		t.Error("Container should have a non-nil cache service")
	}
	if _, ok := container.Store().(*cache.MemoryStore); !ok {
		t.Errorf("Expected the default store to be in memory, got %T", container.Store())
	}

	cfg := container.Config()
	defaults := config.DefaultConfig()
	if cfg.SearchCache.TTL != defaults.SearchCache.TTL {
		t.Errorf("Expected default TTL %v, got %v", defaults.SearchCache.TTL, cfg.SearchCache.TTL)
	}
	if cfg.Browser.ItemsPerPage != defaults.Browser.ItemsPerPage {
		t.Errorf("Expected default page size %d, got %d", defaults.Browser.ItemsPerPage, cfg.Browser.ItemsPerPage)
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero page size", func(c *config.Config) { c.Browser.ItemsPerPage = 0 }},
		{"zero cache capacity", func(c *config.Config) { c.SearchCache.Capacity = 0 }},
		{"unknown source", func(c *config.Config) { c.Source.Kind = "ftp" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			if _, err := NewContainer(context.Background(), cfg); err == nil {
				t.Error("NewContainer() should fail with invalid config")
			}
		})
	}
}

func TestNewContainer_RedisUnreachable(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Backend = cache.BackendRedis
	cfg.Store.Redis.Addr = "127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewContainer(ctx, cfg, WithService(testsupport.NewFakeService())); err == nil {
		t.Error("NewContainer() should fail when redis cannot be reached")
	}
}

func TestContainerSingletonBehavior(t *testing.T) {
	container, err := NewContainerWithDefaults(context.Background(), WithService(testsupport.NewFakeService()))
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	defer container.Close()

	if container.CacheService() != container.CacheService() {
		t.Error("CacheService() should return the same instance (singleton behavior)")
	}
	if container.Browser() != container.Browser() {
		t.Error("Browser() should return the same instance (singleton behavior)")
	}
	if container.Store() != container.Store() {
		t.Error("Store() should return the same instance (singleton behavior)")
	}
}

func TestContainer_WithStore(t *testing.T) {
	store := cache.NewMemoryStore()
	container, err := NewContainerWithDefaults(context.Background(),
		WithService(testsupport.NewFakeService(testsupport.GenerateResources(3, "ai")...)),
		WithStore(store),
	)
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	defer container.Close()

	if _, err := container.Browser().Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Expected the first page in the injected store, got %d entries", store.Len())
	}
}

func TestContainer_MigrateUnsupported(t *testing.T) {
	container, err := NewContainerWithDefaults(context.Background(), WithService(testsupport.NewFakeService()))
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}
	defer container.Close()

	if err := container.Migrate(context.Background()); !errors.Is(err, ErrMigrateUnsupported) {
		t.Errorf("Expected ErrMigrateUnsupported, got %v", err)
	}
}

func TestContainer_PostgRESTSource(t *testing.T) {
	records := testsupport.GenerateResources(3, "ai", "trending")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Range", "0-2/3")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(testsupport.MustJSON(t, records))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.Source.Kind = config.SourcePostgREST
	cfg.Source.PostgREST.BaseURL = server.URL
	cfg.Source.PostgREST.APIKey = "anon"

	container, err := NewContainer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	defer container.Close()

	view, err := container.Browser().Start(context.Background())
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if len(view.Records) != 3 || view.TotalCount != 3 {
		t.Errorf("Expected 3 records out of 3, got %d out of %d", len(view.Records), view.TotalCount)
	}
	if view.TotalPages != 1 {
		t.Errorf("Expected 1 page, got %d", view.TotalPages)
	}
	if err := container.Migrate(context.Background()); !errors.Is(err, ErrMigrateUnsupported) {
		t.Errorf("Expected ErrMigrateUnsupported for postgrest, got %v", err)
	}
}
