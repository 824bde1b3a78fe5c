package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// RedisStore is a Store shared through Redis. Entries are msgpack encoded and
// written without expiry; Clear removes every key under the namespace.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
	logger    zerolog.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis and pings it before returning.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Str("redis_address", cfg.Addr).Str("namespace", cfg.Namespace).Msg("browsing store connected to redis")
	return NewRedisStoreWithClient(client, cfg.Namespace, logger), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient, namespace string, logger zerolog.Logger) *RedisStore {
	if namespace == "" {
		namespace = DefaultRedisNamespace
	}
	return &RedisStore{
		client:    client,
		namespace: namespace,
		logger:    logger.With().Str("component", "RedisStore").Logger(),
	}
}

func (s *RedisStore) redisKey(key Key) string {
	return s.namespace + KeySeparator + string(key)
}

// Get implements Store. Redis and decoding errors are logged and reported as a miss.
func (s *RedisStore) Get(ctx context.Context, key Key) (Entry, bool) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key.String()).Msg("redis get failed, treating as miss")
		}
		return Entry{}, false
	}

	var entry Entry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		s.logger.Warn().Err(err).Str("key", key.String()).Msg("failed to decode cached entry")
		return Entry{}, false
	}
	return entry, true
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, key Key, entry Entry) error {
	entry.Key = key
	data, err := msgpack.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.redisKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store entry %s: %w", key, err)
	}
	return nil
}

// Clear implements Store by scanning the namespace and deleting in batches.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.namespace+KeySeparator+"*", 256).Iterator()

	batch := make([]string, 0, 256)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to clear browsing store: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan browsing store: %w", err)
	}
	return flush()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
