package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/d60-Lab/tweetline/pkg/logger"
)

// Entity kinds used as object cache key prefixes.
const (
	KindUser    = "user"
	KindProfile = "profile"
	KindTweet   = "tweet"
)

// ErrMiss is the steady-state outcome for an absent or unreachable entry.
// Callers fall back to the store; a miss is never a failure.
var ErrMiss = errors.New("cache: miss")

// ObjectCache is a read-through KV cache of serialized entities keyed by
// "<kind>:<id>". It never reads the store itself; services populate it after
// a miss. A circuit breaker shields the store path from a struggling Redis:
// while the breaker is open every operation reports a miss immediately.
type ObjectCache struct {
	rdb     *redis.Client
	ttl     time.Duration
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

func NewObjectCache(rdb *redis.Client, ttl, timeout time.Duration) *ObjectCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if timeout <= 0 {
		timeout = 200 * time.Millisecond
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "object-cache",
		Timeout: 5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &ObjectCache{rdb: rdb, ttl: ttl, timeout: timeout, breaker: breaker}
}

func Key(kind, id string) string { return fmt.Sprintf("%s:%s", kind, id) }

// Get unmarshals the cached entry into out. Returns ErrMiss when absent or
// when Redis is unavailable.
func (c *ObjectCache) Get(ctx context.Context, kind, id string, out interface{}) error {
	data, err := c.do(ctx, func(ctx context.Context) (interface{}, error) {
		b, err := c.rdb.Get(ctx, Key(kind, id)).Bytes()
		if errors.Is(err, redis.Nil) {
			// an absent key is a healthy answer, not a backend failure
			return []byte(nil), nil
		}
		return b, err
	})
	if err != nil {
		return ErrMiss
	}
	b := data.([]byte)
	if b == nil {
		return ErrMiss
	}
	if uErr := json.Unmarshal(b, out); uErr != nil {
		return ErrMiss
	}
	return nil
}

// Set stores the entry with the configured TTL. Failures are logged and
// swallowed; the next reader simply misses.
func (c *ObjectCache) Set(ctx context.Context, kind, id string, obj interface{}) {
	payload, err := json.Marshal(obj)
	if err != nil {
		return
	}
	if _, err := c.do(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, c.rdb.Set(ctx, Key(kind, id), payload, c.ttl).Err()
	}); err != nil {
		logger.Debug("cache set failed", zap.String("key", Key(kind, id)), zap.Error(err))
	}
}

// MGet fetches many entries of one kind in a single round trip and returns the
// hits keyed by id. Missing or undecodable entries are simply absent.
func (c *ObjectCache) MGet(ctx context.Context, kind string, ids []string, decode func(id string, data []byte)) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = Key(kind, id)
	}
	vals, err := c.do(ctx, func(ctx context.Context) (interface{}, error) {
		return c.rdb.MGet(ctx, keys...).Result()
	})
	if err != nil {
		return
	}
	for i, v := range vals.([]interface{}) {
		if v == nil {
			continue
		}
		if str, ok := v.(string); ok {
			decode(ids[i], []byte(str))
		}
	}
}

// Invalidate removes entries. Called after the backing row is committed and
// before the mutating call returns.
func (c *ObjectCache) Invalidate(ctx context.Context, kind string, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = Key(kind, id)
	}
	if _, err := c.do(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, c.rdb.Del(ctx, keys...).Err()
	}); err != nil {
		// TTL bounds the staleness window when this is lost.
		logger.Warn("cache invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// do runs one Redis operation under the breaker with a bounded timeout.
func (c *ObjectCache) do(ctx context.Context, op func(context.Context) (interface{}, error)) (interface{}, error) {
	return c.breaker.Execute(func() (interface{}, error) {
		opCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return op(opCtx)
	})
}
