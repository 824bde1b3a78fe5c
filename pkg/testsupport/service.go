package testsupport

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-catalog-browser/catalog"
	"github.com/goliatone/go-catalog-browser/pagination"
)

// Call records one invocation of a FakeService method.
type Call struct {
	Method  string
	Query   catalog.Query
	Filters catalog.Filters
}

// FakeService is an in-memory catalog.Service for tests. It records calls and
// lets tests block, fail or reshape individual Fetch calls.
type FakeService struct {
	mu      sync.Mutex
	records []catalog.Resource
	calls   []Call

	// FetchHook runs before Fetch answers. A non-nil error is returned as-is.
	// Hooks may block to simulate slow responses.
	FetchHook func(ctx context.Context, q catalog.Query) error

	// RangeErrors makes Fetch fail with *catalog.RangeError for pages past the
	// end, instead of answering with an empty page.
	RangeErrors bool

	// Now stamps created and updated records.
	Now func() time.Time
}

var _ catalog.Service = (*FakeService)(nil)

// NewFakeService seeds a FakeService with records.
func NewFakeService(records ...catalog.Resource) *FakeService {
	return &FakeService{
		records: append([]catalog.Resource(nil), records...),
		Now:     time.Now,
	}
}

func (s *FakeService) record(c Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

// Calls returns a copy of the recorded calls.
func (s *FakeService) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount returns how many times method was called.
func (s *FakeService) CallCount(method string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// FetchCount returns how many Fetch calls asked for page under filters.
func (s *FakeService) FetchCount(page int, filters catalog.Filters) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == "Fetch" && c.Query.Page == page && c.Query.Filters.Normalized() == filters.Normalized() {
			n++
		}
	}
	return n
}

// ResetCalls forgets recorded calls.
func (s *FakeService) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *FakeService) matching(filters catalog.Filters) []catalog.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]catalog.Resource, 0, len(s.records))
	for _, r := range s.records {
		if filters.Matches(r) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b catalog.Resource) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out
}

// Fetch implements catalog.QueryService.
func (s *FakeService) Fetch(ctx context.Context, q catalog.Query) (catalog.Page, error) {
	s.record(Call{Method: "Fetch", Query: q, Filters: q.Filters})

	if s.FetchHook != nil {
		if err := s.FetchHook(ctx, q); err != nil {
			return catalog.Page{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		return catalog.Page{}, err
	}

	all := s.matching(q.Filters)
	total := len(all)
	from := pagination.Offset(q.Page, q.PageSize)
	if from >= total {
		if s.RangeErrors && q.Page > 1 {
			return catalog.Page{}, catalog.NewRangeError(q.Page, total)
		}
		return catalog.Page{Records: []catalog.Resource{}, TotalCount: total}, nil
	}
	to := min(from+q.PageSize, total)
	return catalog.Page{Records: all[from:to], TotalCount: total}, nil
}

// FetchAll implements catalog.QueryService.
func (s *FakeService) FetchAll(ctx context.Context, filters catalog.Filters) ([]catalog.Resource, error) {
	s.record(Call{Method: "FetchAll", Filters: filters})
	return s.matching(filters), nil
}

// Suggest implements catalog.Suggester.
func (s *FakeService) Suggest(ctx context.Context, term string, limit int) ([]string, error) {
	s.record(Call{Method: "Suggest", Filters: catalog.Filters{Search: term}})

	term = strings.ToLower(strings.TrimSpace(term))
	var titles []string
	for _, r := range s.matching(catalog.Filters{}) {
		if strings.Contains(strings.ToLower(r.Title), term) {
			titles = append(titles, r.Title)
			if len(titles) == limit {
				break
			}
		}
	}
	return titles, nil
}

// Create implements catalog.Mutator.
func (s *FakeService) Create(ctx context.Context, r catalog.Resource) (catalog.Resource, error) {
	s.record(Call{Method: "Create"})

	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.UpdatedAt = s.Now()
	s.records = append(s.records, r)
	return r, nil
}

// Update implements catalog.Mutator.
func (s *FakeService) Update(ctx context.Context, id string, r catalog.Resource) (catalog.Resource, error) {
	s.record(Call{Method: "Update"})

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			r.ID = id
			r.UpdatedAt = s.Now()
			s.records[i] = r
			return r, nil
		}
	}
	return catalog.Resource{}, catalog.ErrNotFound
}

// Delete implements catalog.Mutator.
func (s *FakeService) Delete(ctx context.Context, id string) error {
	s.record(Call{Method: "Delete"})

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = slices.Delete(s.records, i, i+1)
			return nil
		}
	}
	return catalog.ErrNotFound
}
