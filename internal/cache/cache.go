// Package cache keeps extracted schemas in Redis so repeated runs against the
// same database skip extraction.
package cache

import (
	"dbdocs/internal/schema"
	"dbdocs/pkg/config"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"github.com/mitchellh/hashstructure/v2"
	"github.com/rs/zerolog/log"
)

// ErrMiss is returned by a Store when the key is absent.
var ErrMiss = errors.New("cache miss")

const keyPrefix = "dbdocs:schema:"

// Store is the byte-level key/value backend.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Close() error
}

type keySource struct {
	URL    string
	Schema config.SchemaConfig
}

// Key derives the cache key of an extraction from the database URL and the
// schema options that shape its result.
func Key(databaseURL string, cfg config.SchemaConfig) (string, error) {
	h, err := hashstructure.Hash(keySource{URL: databaseURL, Schema: cfg}, hashstructure.FormatV2, nil)
	if err != nil {
		return "", fmt.Errorf("failed to hash cache key: %w", err)
	}
	return fmt.Sprintf("%s%016x", keyPrefix, h), nil
}

type SchemaCache struct {
	store Store
	ttl   time.Duration
}

func New(store Store, ttl time.Duration) *SchemaCache {
	return &SchemaCache{store: store, ttl: ttl}
}

// Load returns the cached schema under key. ok is false on a miss.
func (c *SchemaCache) Load(key string) (s *schema.Schema, ok bool, err error) {
	data, err := c.store.Get(key)
	if errors.Is(err, ErrMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache: %w", err)
	}

	s = &schema.Schema{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached schema: %w", err)
	}
	return s, true, nil
}

func (c *SchemaCache) Save(key string, s *schema.Schema) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	if err := c.store.Set(key, data, c.ttl); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Fetch returns the cached schema under key, or runs extract and caches its
// result. Cache failures are logged and never fail the fetch.
func (c *SchemaCache) Fetch(key string, extract func() (*schema.Schema, error)) (*schema.Schema, error) {
	s, ok, err := c.Load(key)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("key", key).Msg("schema cache unavailable, extracting")
	case ok:
		log.Debug().Str("key", key).Msg("schema cache hit")
		return s, nil
	default:
		log.Debug().Str("key", key).Msg("schema cache miss")
	}

	s, err = extract()
	if err != nil {
		return nil, err
	}

	if err := c.Save(key, s); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache schema")
	}
	return s, nil
}

func (c *SchemaCache) Close() error {
	return c.store.Close()
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis server described by cfg.
func NewRedisStore(cfg config.CacheConfig) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := client.Ping().Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &redisStore{client: client}, nil
}

func (r *redisStore) Get(key string) ([]byte, error) {
	data, err := r.client.Get(key).Bytes()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	return data, err
}

func (r *redisStore) Set(key string, value []byte, ttl time.Duration) error {
	return r.client.Set(key, value, ttl).Err()
}

func (r *redisStore) Close() error {
	return r.client.Close()
}
