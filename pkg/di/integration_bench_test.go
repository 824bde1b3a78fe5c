package di

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/goliatone/go-catalog-browser/browser"
	"github.com/goliatone/go-catalog-browser/catalog"
	"github.com/goliatone/go-catalog-browser/pkg/testsupport"
)

// TestConcurrentAccess drives intents from many goroutines. Every intent must
// settle and the final view must satisfy the page bounds.
func TestConcurrentAccess(t *testing.T) {
	container := newTestContainer(t, seededService())
	b := container.Browser()
	ctx := context.Background()

	if _, err := b.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	const numGoroutines = 20
	const operationsPerGoroutine = 10

	var wg sync.WaitGroup
	errs := make(chan error, numGoroutines*operationsPerGoroutine)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				var err error
				switch (workerID + j) % 5 {
				case 0:
					_, err = b.Next(ctx)
				case 1:
					_, err = b.Prev(ctx)
				case 2:
					_, err = b.SelectCategory(ctx, []string{"ai", "dev", catalog.AllCategories}[j%3])
				case 3:
					_, err = b.SelectTag(ctx, "mac")
				case 4:
					_, err = b.GoToPage(ctx, j%4+1)
				}
				if err != nil {
					errs <- fmt.Errorf("worker %d op %d: %w", workerID, j, err)
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	b.Wait()
	view, err := b.Reload(ctx)
	if err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}
	if view.IsLoading {
		t.Error("view should not be loading once every intent settled")
	}
	maxPage := max(view.TotalPages, 1)
	if view.CurrentPage < 1 || view.CurrentPage > maxPage {
		t.Errorf("current page %d outside [1, %d]", view.CurrentPage, maxPage)
	}
}

// TestConcurrentReadWrite interleaves mutations with paging.
func TestConcurrentReadWrite(t *testing.T) {
	svc := seededService()
	container := newTestContainer(t, svc)
	b := container.Browser()
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			if _, err := b.SelectCategory(ctx, "ai"); err != nil {
				t.Errorf("SelectCategory() failed: %v", err)
			}
			if _, err := b.Next(ctx); err != nil {
				t.Errorf("Next() failed: %v", err)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			_, err := b.Create(ctx, catalog.Resource{
				Title:    fmt.Sprintf("New AI tool %d", i),
				URL:      fmt.Sprintf("https://example.com/new/%d", i),
				Category: "ai",
			})
			if err != nil {
				t.Errorf("Create() failed: %v", err)
			}
		}
	}()
	wg.Wait()
	b.Wait()

	view, err := b.SelectCategory(ctx, "ai")
	if err != nil {
		t.Fatalf("SelectCategory() failed: %v", err)
	}
	if view.TotalCount != 30 {
		t.Errorf("Expected 30 ai records after the writes, got %d", view.TotalCount)
	}
}

func BenchmarkBrowsingStoreHit(b *testing.B) {
	svc := testsupport.NewFakeService(testsupport.GenerateResources(100, "ai")...)
	br := browser.New(svc, browser.WithPrefetch(false))
	defer br.Close()
	ctx := context.Background()

	if _, err := br.GoToPage(ctx, 1); err != nil {
		b.Fatalf("GoToPage() failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := br.GoToPage(ctx, 1); err != nil {
			b.Fatalf("GoToPage() failed: %v", err)
		}
	}
}

func BenchmarkCachedVsBaseService(b *testing.B) {
	q := catalog.Query{Page: 2, PageSize: 10, Filters: catalog.Filters{Search: "resource"}}
	ctx := context.Background()

	b.Run("Base", func(b *testing.B) {
		svc := testsupport.NewFakeService(testsupport.GenerateResources(500, "ai")...)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := svc.Fetch(ctx, q); err != nil {
				b.Fatalf("Fetch() failed: %v", err)
			}
		}
	})

	b.Run("Cached", func(b *testing.B) {
		svc := testsupport.NewFakeService(testsupport.GenerateResources(500, "ai")...)
		container, err := NewContainerWithDefaults(ctx, WithService(svc))
		if err != nil {
			b.Fatalf("NewContainerWithDefaults() failed: %v", err)
		}
		defer container.Close()
		cached := container.Service()

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := cached.Fetch(ctx, q); err != nil {
				b.Fatalf("Fetch() failed: %v", err)
			}
		}
	})
}

func BenchmarkConcurrentBrowsing(b *testing.B) {
	svc := testsupport.NewFakeService(testsupport.GenerateResources(100, "ai")...)
	br := browser.New(svc)
	defer br.Close()
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		page := 1
		for pb.Next() {
			if _, err := br.GoToPage(ctx, page); err != nil {
				b.Errorf("GoToPage() failed: %v", err)
				return
			}
			page = page%10 + 1
		}
	})
}
