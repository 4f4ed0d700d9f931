// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"agencysite/internal/models"
)

const (
	// responseKeyPrefix is the Valkey key prefix for cached API responses.
	responseKeyPrefix = "api:"

	// generationPrefix prefixes the per-key generation counters.
	generationPrefix = responseKeyPrefix + "gen:"

	// DefaultResponseTTL is how long an encoded listing stays cached.
	DefaultResponseTTL = 5 * time.Minute
)

// ResponseCache stores encoded JSON listings in Valkey. The database stays
// the source of truth: every cache error is logged and treated as a miss.
// A nil *ResponseCache is valid and caches nothing.
//
// Bodies are stored under the key's current generation. Invalidate bumps the
// generation instead of deleting, so a reader that loaded its listing before
// a write cannot publish it after that write's Invalidate: its Set lands in
// an old generation nobody reads, which then expires.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Entry is the cache slot a Get looked at. Pass it to Set to fill the slot.
// The zero Entry is a slot that is never stored.
type Entry struct {
	key  string
	slot string
}

// NewResponseCache creates a response cache backed by the given Valkey client.
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	if ttl == 0 {
		ttl = DefaultResponseTTL
	}
	return &ResponseCache{client: client, ttl: ttl}
}

// Get returns the cached body for key and the slot it was read from.
func (rc *ResponseCache) Get(ctx context.Context, key string) (Entry, []byte, bool) {
	if rc == nil {
		return Entry{}, nil, false
	}

	gen, err := rc.client.Get(ctx, generationPrefix+key).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		slog.Warn("response cache generation error", "key", key, "error", err)
		return Entry{}, nil, false
	}
	e := Entry{key: key, slot: responseKeyPrefix + key + ":" + strconv.FormatInt(gen, 10)}

	val, err := rc.client.Get(ctx, e.slot).Bytes()
	if errors.Is(err, redis.Nil) {
		return e, nil, false
	}
	if err != nil {
		slog.Warn("response cache get error", "key", key, "error", err)
		return Entry{}, nil, false
	}
	slog.Debug("response cache hit", "key", key)
	return e, val, true
}

// Set stores body in the slot of e with the configured TTL.
func (rc *ResponseCache) Set(ctx context.Context, e Entry, body []byte) {
	if rc == nil || e.slot == "" {
		return
	}
	if err := rc.client.Set(ctx, e.slot, body, rc.ttl).Err(); err != nil {
		slog.Warn("response cache set error", "key", e.key, "error", err)
	}
}

// Invalidate moves keys to a new generation. Call it after the write that
// changed them has committed.
func (rc *ResponseCache) Invalidate(ctx context.Context, keys ...string) {
	if rc == nil || len(keys) == 0 {
		return
	}
	_, err := rc.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			pipe.Incr(ctx, generationPrefix+k)
		}
		return nil
	})
	if err != nil {
		slog.Warn("response cache invalidate error", "keys", keys, "error", err)
		return
	}
	slog.Debug("response cache invalidated", "keys", keys)
}

// PostsKey returns the cache key for the post listing of lang.
func PostsKey(lang models.Lang) string {
	return "posts:" + string(lang)
}

// ProjectsKey returns the cache key for the project listing of lang.
func ProjectsKey(lang models.Lang) string {
	return "projects:" + string(lang)
}
