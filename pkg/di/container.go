package di

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-catalog-browser/browser"
	"github.com/goliatone/go-catalog-browser/cache"
	"github.com/goliatone/go-catalog-browser/catalog"
	"github.com/goliatone/go-catalog-browser/internal/postgrest"
	"github.com/goliatone/go-catalog-browser/internal/sqlsource"
	"github.com/goliatone/go-catalog-browser/pkg/config"
	"github.com/goliatone/go-catalog-browser/repositorycache"
)

// ErrMigrateUnsupported is returned by Migrate when the source is not a SQL database.
var ErrMigrateUnsupported = errors.New("di: source does not support migrations")

// Container wires the catalog source, the TTL search cache, the browsing
// store and the Browser from a single configuration. Every component is a
// singleton owned by the container and released by Close.
type Container struct {
	config *config.Config
	logger zerolog.Logger

	db     *bun.DB
	sql    *sqlsource.Source
	remote *postgrest.Client
	base   catalog.Service

	cacheService cache.CacheService
	service      *repositorycache.CachedService
	store        cache.Store
	browser      *browser.Browser
}

// Option customizes a Container before it is wired.
type Option func(*Container)

// WithLogger sets the root logger handed to every component.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// WithService replaces the configured source with svc. The source section
// of the configuration is then ignored.
func WithService(svc catalog.Service) Option {
	return func(c *Container) {
		c.base = svc
	}
}

// WithStore replaces the configured browsing store.
func WithStore(store cache.Store) Option {
	return func(c *Container) {
		c.store = store
	}
}

// NewContainer creates a container for cfg. A nil cfg means config.DefaultConfig().
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c := &Container{
		config: cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.wire(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// NewContainerWithDefaults creates a container using config.DefaultConfig().
func NewContainerWithDefaults(ctx context.Context, opts ...Option) (*Container, error) {
	return NewContainer(ctx, nil, opts...)
}

func (c *Container) wire(ctx context.Context) error {
	if c.base == nil {
		base, err := c.openSource()
		if err != nil {
			return err
		}
		c.base = base
	}

	cacheService, err := cache.NewCacheService(c.config.SearchCache)
	if err != nil {
		return fmt.Errorf("search cache: %w", err)
	}
	c.cacheService = cacheService
	c.service = repositorycache.New(c.base, cacheService, repositorycache.WithLogger(c.logger))

	if c.store == nil {
		store, err := cache.NewStore(ctx, c.config.Store, c.logger)
		if err != nil {
			return fmt.Errorf("browsing store: %w", err)
		}
		c.store = store
	}

	// Pages are read from the base source and memoized in the browsing store.
	// Writes go through the decorator so both caches are cleared.
	bc := c.config.Browser
	c.browser = browser.New(c.base,
		browser.WithMutator(c.service),
		browser.WithStore(c.store),
		browser.WithItemsPerPage(bc.ItemsPerPage),
		browser.WithPrefetch(bc.Prefetch),
		browser.WithPrefetchTimeout(bc.PrefetchTimeout),
		browser.WithLogger(c.logger),
	)
	return nil
}

func (c *Container) openSource() (catalog.Service, error) {
	src := c.config.Source
	switch src.Kind {
	case config.SourcePostgREST:
		client, err := postgrest.New(src.PostgREST, postgrest.WithLogger(c.logger))
		if err != nil {
			return nil, err
		}
		c.remote = client
		return client, nil
	default:
		db, err := sqlsource.Open(src.Driver, src.DSN)
		if err != nil {
			return nil, err
		}
		c.db = db
		c.sql = sqlsource.New(db, sqlsource.WithLogger(c.logger))
		return c.sql, nil
	}
}

// Config returns the configuration the container was built from.
func (c *Container) Config() *config.Config {
	return c.config
}

// CacheService returns the TTL cache shared by search and suggestion reads.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// Service returns the cached catalog service. Writes made through it clear
// the TTL cache but not the browsing store; use Browser for writes that
// should be reflected in the browsing session.
func (c *Container) Service() catalog.Service {
	return c.service
}

// Store returns the browsing store.
func (c *Container) Store() cache.Store {
	return c.store
}

// Browser returns the browsing session.
func (c *Container) Browser() *browser.Browser {
	return c.browser
}

// Migrate creates the resources table when the source is a SQL database.
func (c *Container) Migrate(ctx context.Context) error {
	if c.sql == nil {
		return ErrMigrateUnsupported
	}
	return c.sql.Migrate(ctx)
}

// Close stops background work and releases connections.
func (c *Container) Close() error {
	var errs []error
	if c.browser != nil {
		errs = append(errs, c.browser.Close())
	}
	if closer, ok := c.store.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	if c.remote != nil {
		errs = append(errs, c.remote.Close())
	}
	if c.db != nil {
		errs = append(errs, c.db.Close())
	}
	return errors.Join(errs...)
}
