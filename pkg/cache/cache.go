// Package cache memoizes OSM responses in a pluggable Store.
//
// Values are encoded with CBOR, so any struct that survives a JSON round
// trip (exported fields, json tags) can be cached. Keys are built from
// arbitrary parts and always carry the library version, so a new release
// never decodes a shape written by an older one.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/rs/zerolog"
)

// Store keeps opaque values for a limited time.
type Store interface {
	// Get reports found=false for a missing or expired key.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Cache struct {
	store  Store
	ttl    time.Duration
	prefix string
	logger zerolog.Logger

	enc cbor.EncMode
	dec cbor.DecMode
}

type Option func(*Cache)

// WithTTL replaces the default time to live of 600 seconds
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix puts prefix in front of every key, for stores shared between applications
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		c.prefix = prefix
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

func New(store Store, opts ...Option) *Cache {
	enc, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano, Sort: cbor.SortCanonical}.EncMode()
	if err != nil {
		panic(err)
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}

	c := &Cache{
		store:  store,
		ttl:    constants.DefaultCacheTTL,
		logger: zerolog.Nop(),
		enc:    enc,
		dec:    dec,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Key joins parts with "-" behind the prefix, "OSMAPI" and the library version.
func (c *Cache) Key(parts ...any) string {
	all := make([]string, 0, len(parts)+3)
	if c.prefix != "" {
		all = append(all, c.prefix)
	}
	all = append(all, constants.CacheKeyPrefix, constants.Version)
	for _, p := range parts {
		all = append(all, fmt.Sprint(p))
	}
	return strings.Join(all, "-")
}

// Read decodes the value under key into dst.
func (c *Cache) Read(ctx context.Context, key string, dst any) (bool, error) {
	data, found, err := c.store.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := c.dec.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decoding cached %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) Write(ctx context.Context, key string, value any) error {
	data, err := c.enc.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s for cache: %w", key, err)
	}
	return c.store.Set(ctx, key, data, c.ttl)
}

// Exists reports whether key holds an unexpired value.
func (c *Cache) Exists(ctx context.Context, key string) bool {
	_, found, err := c.store.Get(ctx, key)
	return err == nil && found
}

// Delete removes every key, logging rather than returning store failures after the first.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	var first error
	for _, key := range keys {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache delete failed")
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Fetch returns the cached value for key or calls fetch and caches its result.
// With skipRead the cached value is ignored but the fresh one is still written.
// A failing store never fails the fetch; it is logged and bypassed.
func Fetch[T any](ctx context.Context, c *Cache, key string, skipRead bool, fetch func() (T, error)) (T, error) {
	if c == nil {
		return fetch()
	}

	if !skipRead {
		var cached T
		found, err := c.Read(ctx, key, &cached)
		if err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		if found {
			c.logger.Debug().Str("key", key).Msg("cache hit")
			return cached, nil
		}
		c.logger.Debug().Str("key", key).Msg("cache miss")
	}

	value, err := fetch()
	if err != nil {
		return value, err
	}

	if err := c.Write(ctx, key, value); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return value, nil
}
