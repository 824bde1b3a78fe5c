package browser

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-catalog-browser/catalog"
	"github.com/goliatone/go-catalog-browser/pkg/testsupport"
)

// gate blocks fetches for one category until released.
type gate struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate() *gate {
	return &gate{started: make(chan struct{}), release: make(chan struct{})}
}

// gatedFetch blocks every fetch whose category has a gate.
func gatedFetch(gates map[string]*gate) func(context.Context, catalog.Query) error {
	return func(ctx context.Context, q catalog.Query) error {
		g, ok := gates[q.Filters.Category]
		if !ok {
			return nil
		}
		g.once.Do(func() { close(g.started) })
		select {
		case <-g.release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch to start")
	}
}

// newCatalog seeds 25 "ai" records tagged trending and 5 "dev" records tagged mac.
func newCatalog() *testsupport.FakeService {
	return testsupport.NewFakeService(append(
		testsupport.GenerateResources(25, "ai", "trending"),
		testsupport.GenerateResources(5, "dev", "mac")...,
	)...)
}

// viewRecorder collects observer callbacks.
type viewRecorder struct {
	mu    sync.Mutex
	views []View
}

func (r *viewRecorder) observe(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *viewRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = nil
}

func (r *viewRecorder) all() []View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]View(nil), r.views...)
}

// queryOnly hides the Mutator side of a service.
type queryOnly struct {
	catalog.QueryService
}
