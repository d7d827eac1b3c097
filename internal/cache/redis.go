// Package cache publishes customer segments to Redis so that online services
// can look up a customer's segment without reading the output files.
//
// Two hashes are written per run, keyed by customer id:
//
//	<prefix>segment  customer_id -> segment name
//	<prefix>rfm      customer_id -> R and F scores as a two digit code, e.g. "54"
//
// Each hash is filled under a staging key and renamed into place, so readers
// never observe a half-written run.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"salesetl/internal/config"
	"salesetl/internal/logging"
	"salesetl/internal/schema"
	"salesetl/internal/table"
)

// chunk bounds the number of fields sent per HSET.
const chunk = 500

// ErrNotFound is returned by Lookup for unknown customers.
var ErrNotFound = errors.New("customer not cached")

// client is the subset of *redis.Client the cache uses.
type client interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Rename(ctx context.Context, key, newkey string) *redis.StatusCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Close() error
}

// SegmentCache writes segments to Redis.
type SegmentCache struct {
	client client
	prefix string
	ttl    time.Duration
}

// NewSegmentCache connects to the configured Redis and pings it.
func NewSegmentCache(ctx context.Context, cfg config.RedisConfig) (*SegmentCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	logging.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("connected to redis")
	return newSegmentCache(rdb, cfg), nil
}

func newSegmentCache(c client, cfg config.RedisConfig) *SegmentCache {
	return &SegmentCache{client: c, prefix: cfg.KeyPrefix, ttl: cfg.TTL}
}

// SegmentKey is the hash holding customer_id -> segment.
func (c *SegmentCache) SegmentKey() string { return c.prefix + "segment" }

// RFMKey is the hash holding customer_id -> RFM code.
func (c *SegmentCache) RFMKey() string { return c.prefix + "rfm" }

// StoreSegments replaces both hashes with the rows of segments.
func (c *SegmentCache) StoreSegments(ctx context.Context, segments *table.Table) error {
	if err := schema.Require(segments, schema.Segment.Name, "customer_id", "RFM", "segment"); err != nil {
		return err
	}
	names := make([]any, 0, 2*segments.NumRows())
	codes := make([]any, 0, 2*segments.NumRows())
	for i := 0; i < segments.NumRows(); i++ {
		id, ok := asInt(segments, i, "customer_id")
		if !ok {
			continue
		}
		field := strconv.FormatInt(id, 10)
		if v, _ := segments.Value(i, "segment"); v != nil {
			names = append(names, field, v)
		}
		if v, _ := segments.Value(i, "RFM"); v != nil {
			codes = append(codes, field, v)
		}
	}

	if err := c.replace(ctx, c.SegmentKey(), names); err != nil {
		return err
	}
	if err := c.replace(ctx, c.RFMKey(), codes); err != nil {
		return err
	}
	logging.Info().
		Str("key", c.SegmentKey()).
		Int("customers", len(names)/2).
		Dur("ttl", c.ttl).
		Msg("segments cached")
	return nil
}

// Lookup returns the cached segment of a customer.
func (c *SegmentCache) Lookup(ctx context.Context, customerID int64) (string, error) {
	v, err := c.client.HGet(ctx, c.SegmentKey(), strconv.FormatInt(customerID, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis hget %s: %w", c.SegmentKey(), err)
	}
	return v, nil
}

// Close releases the connection pool.
func (c *SegmentCache) Close() error { return c.client.Close() }

// replace writes pairs into a staging hash and renames it over key. An empty
// pairs slice removes key.
func (c *SegmentCache) replace(ctx context.Context, key string, pairs []any) error {
	if len(pairs) == 0 {
		return c.client.Del(ctx, key).Err()
	}
	staging := key + ":staging"
	if err := c.client.Del(ctx, staging).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", staging, err)
	}
	for start := 0; start < len(pairs); start += 2 * chunk {
		end := min(start+2*chunk, len(pairs))
		if err := c.client.HSet(ctx, staging, pairs[start:end]...).Err(); err != nil {
			return fmt.Errorf("redis hset %s: %w", staging, err)
		}
	}
	if err := c.client.Rename(ctx, staging, key).Err(); err != nil {
		return fmt.Errorf("redis rename %s: %w", key, err)
	}
	if c.ttl > 0 {
		if err := c.client.Expire(ctx, key, c.ttl).Err(); err != nil {
			return fmt.Errorf("redis expire %s: %w", key, err)
		}
	}
	return nil
}

func asInt(t *table.Table, i int, name string) (int64, bool) {
	v, err := t.Value(i, name)
	if err != nil {
		return 0, false
	}
	n, ok := v.(int64)
	return n, ok
}
