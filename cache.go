package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	log "gopkg.in/inconshreveable/log15.v2"
)

// timelineCache holds assembled first pages keyed by consumer. It is
// strictly best-effort: every implementation swallows its own failures,
// since a cache miss just means reading the materialized store.
type timelineCache interface {
	get(ctx context.Context, consumerID string) ([]Post, bool)
	set(ctx context.Context, consumerID string, posts []Post)
	invalidate(ctx context.Context, consumerIDs ...string)
}

const timelineKeyPrefix = "timeline:first:"

type redisTimelineCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger log.Logger
}

func NewRedisTimelineCache(rdb *redis.Client, ttl time.Duration, logger log.Logger) *redisTimelineCache {
	return &redisTimelineCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *redisTimelineCache) get(ctx context.Context, consumerID string) ([]Post, bool) {
	raw, err := c.rdb.Get(ctx, timelineKeyPrefix+consumerID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("timeline cache get failed", "consumerID", consumerID, "error", err)
		}
		return nil, false
	}

	var posts []Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, false
	}
	return posts, true
}

func (c *redisTimelineCache) set(ctx context.Context, consumerID string, posts []Post) {
	raw, err := json.Marshal(posts)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, timelineKeyPrefix+consumerID, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("timeline cache set failed", "consumerID", consumerID, "error", err)
	}
}

func (c *redisTimelineCache) invalidate(ctx context.Context, consumerIDs ...string) {
	if len(consumerIDs) == 0 {
		return
	}

	keys := make([]string, len(consumerIDs))
	for i, id := range consumerIDs {
		keys[i] = timelineKeyPrefix + id
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("timeline cache invalidate failed", "keys", len(keys), "error", err)
	}
}

// noopTimelineCache is used when no redis address is configured.
type noopTimelineCache struct{}

func (noopTimelineCache) get(ctx context.Context, consumerID string) ([]Post, bool) { return nil, false }
func (noopTimelineCache) set(ctx context.Context, consumerID string, posts []Post)  {}
func (noopTimelineCache) invalidate(ctx context.Context, consumerIDs ...string)     {}
