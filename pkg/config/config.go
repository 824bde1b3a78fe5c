package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-catalog-browser/cache"
	"github.com/goliatone/go-catalog-browser/internal/postgrest"
	"github.com/goliatone/go-catalog-browser/internal/sqlsource"
)

// Source kinds.
const (
	SourceSQL       = "sql"
	SourcePostgREST = "postgrest"
)

// Log formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config is the application configuration.
type Config struct {
	Browser     BrowserConfig     `yaml:"browser"`
	Store       cache.StoreConfig `yaml:"store"`
	SearchCache cache.Config      `yaml:"search_cache"`
	Source      SourceConfig      `yaml:"source"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// BrowserConfig configures paging and prefetch.
type BrowserConfig struct {
	ItemsPerPage    int           `yaml:"items_per_page"`
	Prefetch        bool          `yaml:"prefetch"`
	PrefetchTimeout time.Duration `yaml:"prefetch_timeout"`
}

// SourceConfig selects where records are read from and written to.
type SourceConfig struct {
	Kind      string           `yaml:"kind"`
	Driver    string           `yaml:"driver"`
	DSN       string           `yaml:"dsn"`
	PostgREST postgrest.Config `yaml:"postgrest"`
}

// LoggingConfig configures the root logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a configuration that browses a local sqlite file
// through an in-memory store.
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			ItemsPerPage:    10,
			Prefetch:        true,
			PrefetchTimeout: 10 * time.Second,
		},
		Store:       cache.DefaultStoreConfig(),
		SearchCache: cache.DefaultConfig(),
		Source: SourceConfig{
			Kind:      SourceSQL,
			Driver:    sqlsource.DriverSQLite,
			DSN:       "file:catalog.db?cache=shared",
			PostgREST: postgrest.DefaultConfig(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: FormatConsole,
		},
	}
}

// Load reads configuration from path on top of the defaults. An empty path
// or a missing file yields the defaults. Environment overrides are applied
// last, then the result is validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyEnvironmentOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyEnvironmentOverrides(cfg *Config) {
	if v := os.Getenv("CATALOG_ITEMS_PER_PAGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Browser.ItemsPerPage = n
		}
	}
	if v := os.Getenv("CATALOG_PREFETCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Browser.Prefetch = b
		}
	}

	if v := os.Getenv("CATALOG_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("CATALOG_REDIS_ADDR"); v != "" {
		cfg.Store.Redis.Addr = v
	}
	if v := os.Getenv("CATALOG_REDIS_PASSWORD"); v != "" {
		cfg.Store.Redis.Password = v
	}

	if v := os.Getenv("CATALOG_SOURCE"); v != "" {
		cfg.Source.Kind = v
	}
	if v := os.Getenv("CATALOG_DB_DRIVER"); v != "" {
		cfg.Source.Driver = v
	}
	if v := os.Getenv("CATALOG_DB_DSN"); v != "" {
		cfg.Source.DSN = v
	}
	if v := os.Getenv("CATALOG_POSTGREST_URL"); v != "" {
		cfg.Source.PostgREST.BaseURL = v
	}
	if v := os.Getenv("CATALOG_POSTGREST_API_KEY"); v != "" {
		cfg.Source.PostgREST.APIKey = v
	}

	if v := os.Getenv("CATALOG_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CATALOG_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Browser.Validate(); err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.SearchCache.Validate(); err != nil {
		return fmt.Errorf("search_cache: %w", err)
	}
	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

func (c BrowserConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ItemsPerPage, validation.Required, validation.Min(1)),
		validation.Field(&c.PrefetchTimeout, validation.Min(time.Duration(0))),
	)
}

func (c SourceConfig) Validate() error {
	if err := validation.ValidateStruct(&c,
		validation.Field(&c.Kind, validation.Required, validation.In(SourceSQL, SourcePostgREST)),
	); err != nil {
		return err
	}
	if c.Kind == SourcePostgREST {
		return c.PostgREST.Validate()
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required, validation.In(sqlsource.DriverSQLite, sqlsource.DriverPostgres)),
		validation.Field(&c.DSN, validation.Required),
	)
}

func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return fmt.Errorf("level: %w", err)
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.Format, validation.In(FormatJSON, FormatConsole)),
	)
}

// NewLogger builds the root logger described by c, writing to w.
func NewLogger(c LoggingConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}
	if c.Format == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
