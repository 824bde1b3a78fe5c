package sqlsource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-catalog-browser/catalog"
)

var _ catalog.Service = (*Source)(nil)

// Source serves the catalog from a SQL database through a go-repository-bun repository.
type Source struct {
	repo   repository.Repository[*Model]
	db     *bun.DB
	now    func() time.Time
	logger zerolog.Logger
}

// Option configures a Source.
type Option func(*Source)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// WithClock sets the time source used for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Source) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Source over db.
func New(db *bun.DB, opts ...Option) *Source {
	s := NewWithRepository(repository.NewRepository[*Model](db, Handlers()), opts...)
	s.db = db
	return s
}

// NewWithRepository creates a Source over an existing repository. Migrate is
// unavailable on a Source built this way.
func NewWithRepository(repo repository.Repository[*Model], opts ...Option) *Source {
	s := &Source{
		repo:   repo,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "sqlsource").Logger()
	return s
}

// Fetch implements catalog.QueryService. Pages past the end come back empty
// with the full total.
func (s *Source) Fetch(ctx context.Context, q catalog.Query) (catalog.Page, error) {
	if err := q.Validate(); err != nil {
		return catalog.Page{}, fmt.Errorf("invalid query: %w", err)
	}

	records, total, err := s.repo.List(ctx,
		matching(q.Filters),
		newestFirst(),
		paginate(q.Page, q.PageSize),
	)
	if err != nil {
		return catalog.Page{}, fmt.Errorf("list resources page %d: %w", q.Page, err)
	}

	s.logger.Debug().Int("page", q.Page).Int("rows", len(records)).Int("total", total).Msg("fetched page")
	return catalog.Page{Records: toResources(records), TotalCount: total}, nil
}

// FetchAll implements catalog.QueryService.
func (s *Source) FetchAll(ctx context.Context, filters catalog.Filters) ([]catalog.Resource, error) {
	records, _, err := s.repo.List(ctx, matching(filters), newestFirst())
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return toResources(records), nil
}

// Suggest implements catalog.Suggester.
func (s *Source) Suggest(ctx context.Context, term string, n int) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	if n <= 0 {
		n = catalog.DefaultSuggestionLimit
	}

	records, _, err := s.repo.List(ctx,
		matching(catalog.Filters{Search: term}),
		newestFirst(),
		limit(n),
	)
	if err != nil {
		return nil, fmt.Errorf("suggest %q: %w", term, err)
	}

	titles := make([]string, 0, len(records))
	for _, r := range records {
		titles = append(titles, r.Title)
	}
	return titles, nil
}

// Create implements catalog.Mutator.
func (s *Source) Create(ctx context.Context, r catalog.Resource) (catalog.Resource, error) {
	now := s.now().UTC()
	m := &Model{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	m.apply(r)

	created, err := s.repo.Create(ctx, m)
	if err != nil {
		return catalog.Resource{}, fmt.Errorf("create resource: %w", err)
	}
	return toResource(created), nil
}

// Update implements catalog.Mutator.
func (s *Source) Update(ctx context.Context, id string, r catalog.Resource) (catalog.Resource, error) {
	m, err := s.get(ctx, id)
	if err != nil {
		return catalog.Resource{}, err
	}
	m.apply(r)
	m.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, m)
	if err != nil {
		return catalog.Resource{}, fmt.Errorf("update resource %s: %w", id, err)
	}
	return toResource(updated), nil
}

// Delete implements catalog.Mutator.
func (s *Source) Delete(ctx context.Context, id string) error {
	m, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, m); err != nil {
		return fmt.Errorf("delete resource %s: %w", id, err)
	}
	return nil
}

func (s *Source) get(ctx context.Context, id string) (*Model, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("resource %q: %w", id, catalog.ErrNotFound)
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("resource %s: %w", id, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("get resource %s: %w", id, err)
	}
	if m == nil {
		return nil, fmt.Errorf("resource %s: %w", id, catalog.ErrNotFound)
	}
	return m, nil
}

// Migrate creates the resources table and its ordering index.
func (s *Source) Migrate(ctx context.Context) error {
	if s.db == nil {
		return errors.New("sqlsource: migrate needs a source built with New")
	}
	if _, err := s.db.NewCreateTable().Model((*Model)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create resources table: %w", err)
	}
	_, err := s.db.NewCreateIndex().
		Model((*Model)(nil)).
		Index("resources_updated_at_idx").
		Column("updated_at").
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create resources index: %w", err)
	}
	s.logger.Info().Msg("resources table ready")
	return nil
}
