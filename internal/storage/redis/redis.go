// Package redis provides the optional Redis client and the stores backed
// by it. Everything here degrades gracefully: the site runs without Redis,
// falling back to SQLite or in-memory equivalents.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// New returns a Redis client, or nil when no URL is configured.
func New(url string) (*redis.Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

// processedTTL bounds how long webhook session ids are remembered. The
// payment provider stops retrying deliveries well before this.
const processedTTL = 30 * 24 * time.Hour

// ProcessedStore implements checkout.ProcessedStore on a Redis SETNX, so
// multiple server instances share one dedupe set.
type ProcessedStore struct {
	rdb *redis.Client
}

func NewProcessedStore(rdb *redis.Client) *ProcessedStore {
	return &ProcessedStore{rdb: rdb}
}

func (s *ProcessedStore) MarkProcessed(ctx context.Context, sessionID string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, "processed:"+sessionID, 1, processedTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// recentTTL expires per-visitor rotation history. Six hours keeps the slot
// fresh within a browsing session without pinning keys forever.
const recentTTL = 6 * time.Hour

// RecentStore implements promos.RecentStore on a capped Redis list per
// visitor, so rotation history survives server restarts and is shared
// across instances.
type RecentStore struct {
	rdb *redis.Client
}

func NewRecentStore(rdb *redis.Client) *RecentStore {
	return &RecentStore{rdb: rdb}
}

func recentKey(visitorKey string) string {
	return "recent:" + visitorKey
}

func (s *RecentStore) Recent(ctx context.Context, visitorKey string, n int) ([]int64, error) {
	vals, err := s.rdb.LRange(ctx, recentKey(visitorKey), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}
	ids := make([]int64, 0, len(vals))
	for _, v := range vals {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *RecentStore) Remember(ctx context.Context, visitorKey string, ids []int64, n int) error {
	key := recentKey(visitorKey)
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = strconv.FormatInt(id, 10)
	}
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key, args...)
	pipe.LTrim(ctx, key, 0, int64(n-1))
	pipe.Expire(ctx, key, recentTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}
