package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/turtacn/cgsmiles/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cgsmiles/pkg/errors"
	"golang.org/x/sync/singleflight"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeCacheMiss, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")
)

// ResultCache stores resolved molecules keyed by the notation that produced
// them. Values are JSON documents.
type ResultCache interface {
	Get(ctx context.Context, notation string, dest interface{}) error
	Set(ctx context.Context, notation string, value interface{}) error
	// GetOrLoad fills dest from the cache or, on a miss, from loader. Concurrent
	// misses for the same notation share one loader call.
	GetOrLoad(ctx context.Context, notation string, dest interface{}, loader func(ctx context.Context) (interface{}, error)) error
	Purge(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

type resultCache struct {
	client   *Client
	logger   logging.Logger
	prefix   string
	ttl      time.Duration
	jitter   float64
	observer func(hit bool)
	group    singleflight.Group
}

type CacheOption func(*resultCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *resultCache) { c.prefix = prefix }
}

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *resultCache) { c.ttl = ttl }
}

// WithTTLJitter spreads expirations by ±fraction of the TTL. Zero disables it.
func WithTTLJitter(fraction float64) CacheOption {
	return func(c *resultCache) { c.jitter = fraction }
}

// WithObserver registers a callback invoked once per Get with the hit result.
func WithObserver(fn func(hit bool)) CacheOption {
	return func(c *resultCache) { c.observer = fn }
}

func NewResultCache(client *Client, log logging.Logger, opts ...CacheOption) ResultCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &resultCache{
		client: client,
		logger: log.Named("result_cache"),
		prefix: "cgsmiles:",
		ttl:    time.Hour,
		jitter: 0.1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// key hashes the notation so arbitrarily long inputs map to fixed-size keys.
func (c *resultCache) key(notation string) string {
	sum := sha256.Sum256([]byte(notation))
	return c.prefix + "result:" + hex.EncodeToString(sum[:])
}

func (c *resultCache) expiry() time.Duration {
	if c.ttl <= 0 || c.jitter <= 0 {
		return c.ttl
	}
	delta := float64(c.ttl) * c.jitter * (rand.Float64()*2 - 1)
	return c.ttl + time.Duration(delta)
}

func (c *resultCache) observe(hit bool) {
	if c.observer != nil {
		c.observer(hit)
	}
}

func (c *resultCache) Get(ctx context.Context, notation string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.key(notation)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		c.observe(false)
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to read result cache")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.observe(false)
		return ErrSerializationFailed.WithCause(err)
	}
	c.observe(true)
	return nil
}

func (c *resultCache) Set(ctx context.Context, notation string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	if err := c.client.Set(ctx, c.key(notation), data, c.expiry()).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to write result cache")
	}
	return nil
}

func (c *resultCache) GetOrLoad(ctx context.Context, notation string, dest interface{}, loader func(ctx context.Context) (interface{}, error)) error {
	err := c.Get(ctx, notation, dest)
	if err == nil {
		return nil
	}
	if err != ErrCacheMiss && !errors.IsCode(err, errors.ErrCodeSerialization) {
		c.logger.Warn("result cache read failed, resolving directly", logging.Err(err))
	}

	val, err, _ := c.group.Do(c.key(notation), func() (interface{}, error) {
		v, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if setErr := c.Set(ctx, notation, v); setErr != nil {
			c.logger.Warn("failed to populate result cache", logging.Err(setErr))
		}
		return v, nil
	})
	if err != nil {
		return err
	}

	data, err := json.Marshal(val)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	return json.Unmarshal(data, dest)
}

// Purge removes every cached result under the prefix and returns the count.
func (c *resultCache) Purge(ctx context.Context) (int64, error) {
	var deleted int64
	var cursor uint64
	match := c.prefix + "result:*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to scan result cache")
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "failed to purge result cache")
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func (c *resultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}
