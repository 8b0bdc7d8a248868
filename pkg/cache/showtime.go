package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cinema-reservation/internal/data/entity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const showtimeKeyPrefix = "showtime:"

// ShowtimeCache stores showtimes by id. Showtimes never change after creation,
// so entries are only ever added or left to expire.
type ShowtimeCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, id string) (*entity.Showtime, error)
	Set(ctx context.Context, showtime *entity.Showtime) error
}

type redisShowtimeCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisShowtimeCache(client *redis.Client, ttl time.Duration, log *zap.Logger) ShowtimeCache {
	return &redisShowtimeCache{
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("component", "showtime_cache")),
	}
}

func ShowtimeKey(id string) string {
	return showtimeKeyPrefix + id
}

func (c *redisShowtimeCache) Get(ctx context.Context, id string) (*entity.Showtime, error) {
	raw, err := c.client.Get(ctx, ShowtimeKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached showtime %s: %w", id, err)
	}

	var showtime entity.Showtime
	if err := json.Unmarshal(raw, &showtime); err != nil {
		c.log.Warn("Dropping undecodable cache entry", zap.String("showtime_id", id), zap.Error(err))
		return nil, nil
	}
	return &showtime, nil
}

func (c *redisShowtimeCache) Set(ctx context.Context, showtime *entity.Showtime) error {
	raw, err := json.Marshal(showtime)
	if err != nil {
		return fmt.Errorf("encode showtime %s: %w", showtime.ID, err)
	}

	if err := c.client.Set(ctx, ShowtimeKey(showtime.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache showtime %s: %w", showtime.ID, err)
	}
	return nil
}

type nopShowtimeCache struct{}

// NewNopShowtimeCache returns a cache that never hits.
func NewNopShowtimeCache() ShowtimeCache {
	return nopShowtimeCache{}
}

func (nopShowtimeCache) Get(context.Context, string) (*entity.Showtime, error) { return nil, nil }

func (nopShowtimeCache) Set(context.Context, *entity.Showtime) error { return nil }
