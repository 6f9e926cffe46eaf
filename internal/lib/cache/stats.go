// Package cache stores precomputed catalog statistics in Redis.
//
// The stats pages never compute their numbers on the request path; they
// read the last entry written by the refresh job.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pydigger/pydigger/internal/model"
	"github.com/redis/go-redis/v9"
)

// ErrNotCached is returned by Get when no stats entry exists yet.
var ErrNotCached = errors.New("stats not cached")

// StatsCache reads and writes the stats entry stored under one key.
type StatsCache struct {
	client *redis.Client
	key    string
}

func NewStatsCache(client *redis.Client, key string) *StatsCache {
	return &StatsCache{client: client, key: key}
}

// Get returns the cached stats, ErrNotCached when the key is absent.
func (c *StatsCache) Get(ctx context.Context) (*model.Stats, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotCached
		}
		return nil, fmt.Errorf("reading stats cache: %w", err)
	}

	var stats model.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("decoding stats cache: %w", err)
	}

	return &stats, nil
}

// Set replaces the cached stats. The entry does not expire.
func (c *StatsCache) Set(ctx context.Context, stats *model.Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encoding stats: %w", err)
	}

	if err := c.client.Set(ctx, c.key, data, 0).Err(); err != nil {
		return fmt.Errorf("writing stats cache: %w", err)
	}

	return nil
}
