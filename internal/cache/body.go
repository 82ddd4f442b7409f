// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"blogpress/internal/markdown"
)

const (
	// bodyKeyPrefix is the Valkey key prefix for rendered post bodies.
	bodyKeyPrefix = "body:"

	// DefaultBodyTTL is how long a rendered body stays cached.
	DefaultBodyTTL = time.Hour
)

// BodyCache stores the HTML rendering of post bodies in Valkey. Entries are
// keyed by post ID and the post's updated_at, so an edit naturally misses
// the old entry. Navigation data (category counts) is never cached.
//
// A nil *BodyCache is valid and renders on every call.
type BodyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewBodyCache creates a body cache backed by the given Valkey client.
func NewBodyCache(client *redis.Client, ttl time.Duration) *BodyCache {
	if ttl == 0 {
		ttl = DefaultBodyTTL
	}
	return &BodyCache{client: client, ttl: ttl}
}

// BodyKey returns the cache key for one version of a post body.
func BodyKey(postID uuid.UUID, updatedAt time.Time) string {
	return fmt.Sprintf("%s%s:%d", bodyKeyPrefix, postID, updatedAt.UnixNano())
}

// HTML returns the rendered body for the given post version, converting
// source with markdown.ToHTML on a miss. Cache errors are logged and
// treated as misses.
func (bc *BodyCache) HTML(ctx context.Context, postID uuid.UUID, updatedAt time.Time, source string) (string, error) {
	if bc == nil {
		return markdown.ToHTML(source)
	}

	key := BodyKey(postID, updatedAt)
	val, err := bc.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		slog.Debug("body cache hit", "post_id", postID)
		return val, nil
	case err != redis.Nil:
		slog.Warn("body cache get error", "key", key, "error", err)
	}

	html, err := markdown.ToHTML(source)
	if err != nil {
		return "", fmt.Errorf("render post body: %w", err)
	}

	if err := bc.client.Set(ctx, key, html, bc.ttl).Err(); err != nil {
		slog.Warn("body cache set error", "key", key, "error", err)
	}
	return html, nil
}

// Invalidate removes every cached version of a post body. Used when a
// post is deleted so stale renderings do not linger until their TTL.
func (bc *BodyCache) Invalidate(ctx context.Context, postID uuid.UUID) {
	if bc == nil {
		return
	}

	var cursor uint64
	var deleted int
	pattern := bodyKeyPrefix + postID.String() + ":*"
	for {
		keys, nextCursor, err := bc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("body cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := bc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("body cache delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	slog.Debug("body cache invalidated", "post_id", postID, "deleted", deleted)
}
