package cacheinfra

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc cache adapter.
type Config struct {
	// Capacity defines the maximum number of entries that the cache can store.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	NumShards int

	// TTL is the time-to-live of query results and suggestions.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EarlyRefresh configures background refresh of hot entries.
	// If nil, early refresh is disabled.
	EarlyRefresh *EarlyRefreshConfig

	// MissingRecordStorage remembers lookups that returned sturdyc.ErrNotFound
	// so repeated misses do not reach the backend.
	MissingRecordStorage bool

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration
}

// EarlyRefreshConfig configures early refresh behavior.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns the search cache defaults: a five minute TTL and no early refresh.
func DefaultConfig() Config {
	return Config{
		Capacity:             2000,
		NumShards:            16,
		TTL:                  5 * time.Minute,
		EvictionPercentage:   10,
		MissingRecordStorage: false,
	}
}

// ToSturdycOptions converts the optional parts of Config to sturdyc options.
// Capacity, NumShards, TTL and EvictionPercentage go to sturdyc.New directly.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EarlyRefresh != nil {
		options = append(options, sturdyc.WithEarlyRefreshes(
			c.EarlyRefresh.MinAsyncRefreshTime,
			c.EarlyRefresh.MaxAsyncRefreshTime,
			c.EarlyRefresh.SyncRefreshTime,
			c.EarlyRefresh.RetryBaseDelay,
		))
	}

	if c.MissingRecordStorage {
		options = append(options, sturdyc.WithMissingRecordStorage())
	}

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

type fieldCheck struct {
	field string
	value any
	rules []validation.Rule
}

// Validate checks if the configuration values are valid.
// Zero values only fail rules that are explicitly Required.
func (c Config) Validate() error {
	positive := "must be greater than 0"
	percentage := "must be between 1 and 100"
	nonNegative := []validation.Rule{validation.Min(time.Duration(0)).Error("must be non-negative")}

	checks := []fieldCheck{
		{"Capacity", c.Capacity, []validation.Rule{validation.Required.Error(positive), validation.Min(1).Error(positive)}},
		{"NumShards", c.NumShards, []validation.Rule{validation.Required.Error(positive), validation.Min(1).Error(positive)}},
		{"TTL", c.TTL, []validation.Rule{validation.Required.Error(positive), validation.Min(time.Duration(1)).Error(positive)}},
		{"EvictionPercentage", c.EvictionPercentage, []validation.Rule{validation.Required.Error(percentage), validation.Min(1).Error(percentage), validation.Max(100).Error(percentage)}},
		{"EvictionInterval", c.EvictionInterval, nonNegative},
	}

	if c.EarlyRefresh != nil {
		checks = append(checks,
			fieldCheck{"EarlyRefresh.MinAsyncRefreshTime", c.EarlyRefresh.MinAsyncRefreshTime, nonNegative},
			fieldCheck{"EarlyRefresh.MaxAsyncRefreshTime", c.EarlyRefresh.MaxAsyncRefreshTime, nonNegative},
			fieldCheck{"EarlyRefresh.SyncRefreshTime", c.EarlyRefresh.SyncRefreshTime, nonNegative},
			fieldCheck{"EarlyRefresh.RetryBaseDelay", c.EarlyRefresh.RetryBaseDelay, nonNegative},
		)
	}

	for _, check := range checks {
		if err := validation.Validate(check.value, check.rules...); err != nil {
			return &ConfigError{Field: check.field, Message: err.Error()}
		}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// SturdycService wraps a sturdyc client providing read-through TTL caching.
type SturdycService struct {
	client *sturdyc.Client[any]
}

// NewSturdycService validates cfg and initializes a sturdyc client with it.
func NewSturdycService(cfg Config) (*SturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &SturdycService{client: client}, nil
}

// GetOrFetch returns the cached value for key, or runs fetchFn and caches its result.
// Errors from fetchFn are returned and not cached; concurrent misses on the same
// key share a single fetchFn call.
func (s *SturdycService) GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) (any, error) {
	if fetchFn == nil {
		return nil, &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}
	return s.client.GetOrFetch(ctx, key, fetchFn)
}

// Delete removes a single entry.
func (s *SturdycService) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeleteByPrefix removes every entry whose key starts with prefix.
func (s *SturdycService) DeleteByPrefix(ctx context.Context, prefix string) error {
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}

// Clear removes every entry.
func (s *SturdycService) Clear(ctx context.Context) error {
	for _, key := range s.client.ScanKeys() {
		s.client.Delete(key)
	}
	return nil
}

// Size reports the number of cached entries.
func (s *SturdycService) Size() int {
	return s.client.Size()
}
