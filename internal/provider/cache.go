package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	cacheVersionKey = "shelf:provider:version"
	bumpChannel     = "shelf.provider.bump"
)

// Cache puts a versioned Redis cache in front of another Provider. Concurrent
// identical fetches share one upstream call. Redis failures degrade to a
// direct fetch.
type Cache struct {
	next    Provider
	client  *redis.Client
	ttl     time.Duration
	group   singleflight.Group
	metrics *Metrics
	logger  *slog.Logger
}

// NewCache wraps next. A nil client disables caching but keeps fetch
// collapsing.
func NewCache(next Provider, client *redis.Client, ttl time.Duration, metrics *Metrics, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{next: next, client: client, ttl: ttl, metrics: metrics, logger: logger}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key of a request with the current version.
func (c *Cache) BuildKey(ctx context.Context, req Request) (string, error) {
	user := req.UserID
	if user == "" {
		user = "-"
	}
	joined := strings.Join([]string{"shelf", "provider", string(req.Key), user}, ":")
	if c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// Fetch implements Provider. Fresh requests skip the lookup but still
// repopulate the cache.
func (c *Cache) Fetch(ctx context.Context, req Request) (any, error) {
	key, err := c.BuildKey(ctx, req)
	if err != nil {
		c.logger.Warn("provider cache key", slog.String("query", string(req.Key)), slog.Any("error", err))
		c.metrics.lookup(string(req.Key), "error")
		return c.load(ctx, "", req)
	}
	if !req.Fresh && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var value any
			if err := json.Unmarshal(payload, &value); err == nil {
				c.metrics.lookup(string(req.Key), "hit")
				return value, nil
			}
			c.metrics.lookup(string(req.Key), "error")
		case errors.Is(err, redis.Nil):
			c.metrics.lookup(string(req.Key), "miss")
		default:
			c.logger.Warn("provider cache get", slog.String("query", string(req.Key)), slog.Any("error", err))
			c.metrics.lookup(string(req.Key), "error")
		}
	}
	return c.load(ctx, key, req)
}

func (c *Cache) load(ctx context.Context, key string, req Request) (any, error) {
	flight := key
	if flight == "" {
		flight = string(req.Key) + ":" + req.UserID
	}
	resultChan := c.group.DoChan(flight, func() (interface{}, error) {
		return c.fill(context.WithoutCancel(ctx), key, req)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		return res.Val, res.Err
	}
}

func (c *Cache) fill(ctx context.Context, key string, req Request) (any, error) {
	start := time.Now()
	value, err := c.next.Fetch(ctx, req)
	c.metrics.fetched(string(req.Key), start, err)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("provider: encode %s: %w", req.Key, err)
	}
	if key != "" && c.client != nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("provider cache set", slog.String("query", string(req.Key)), slog.Any("error", err))
		}
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// Bump invalidates every cached payload by incrementing the version and
// publishing it to other instances.
func (c *Cache) Bump(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation reports version bumps published by any instance to
// onBump until ctx is cancelled. The shared version key already moves every
// instance to the new keys, so the listener never writes it; onBump lets the
// caller drop in-process copies of the invalidated payloads.
func (c *Cache) ListenForInvalidation(ctx context.Context, channel string, onBump func(version int64)) error {
	if c.client == nil {
		return nil
	}
	if channel == "" {
		channel = bumpChannel
	}
	pubsub := c.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					c.logger.Warn("provider cache bump payload", slog.String("payload", msg.Payload), slog.Any("error", err))
					continue
				}
				if onBump != nil {
					onBump(ver)
				}
			}
		}
	}()
	return nil
}
