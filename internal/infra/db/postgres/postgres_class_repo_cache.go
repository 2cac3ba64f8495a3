package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"class-access/internal/domain/model"
	"class-access/internal/domain/ports/repository"
	"class-access/internal/infra/metrics"
	red "class-access/internal/infra/redis"
)

var _ repository.ClassRepository = (*classRepoCacheDecorator)(nil)

// classRepoCacheDecorator caches the class read-model in Redis.
// Enrollment lookups are never cached: access checks must see their own writes.
type classRepoCacheDecorator struct {
	inner repository.ClassRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewClassRepoCacheDecorator(inner repository.ClassRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.ClassRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &classRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: logger}
}

// FindByID serves from cache when possible. Redis failures degrade to the
// inner repository; they are never returned to the caller.
func (d *classRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Class, error) {
	key := red.ClassKey(id)
	val, err := d.cache.Get(ctx, key)
	switch {
	case err == nil:
		var c model.Class
		if json.Unmarshal([]byte(val), &c) == nil {
			metrics.IncCacheRequest("class", "hit")
			return &c, nil
		}
		d.log.Warn().Str("key", key).Msg("dropping undecodable class cache entry")
		_ = d.cache.Del(ctx, key)
		metrics.IncCacheRequest("class", "miss")
	case errors.Is(err, red.ErrCacheMiss):
		metrics.IncCacheRequest("class", "miss")
	default:
		metrics.IncCacheRequest("class", "error")
		d.log.Warn().Err(err).Str("key", key).Msg("class cache read failed")
	}

	c, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(c); err == nil {
		if err := d.cache.Set(ctx, key, b, d.ttl); err != nil {
			d.log.Warn().Err(err).Str("key", key).Msg("class cache write failed")
		}
	}
	return c, nil
}

// Save writes through and invalidates the cached entry.
func (d *classRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, c *model.Class) error {
	if err := d.inner.Save(ctx, tx, c); err != nil {
		return err
	}
	if err := d.cache.Del(ctx, red.ClassKey(c.ID)); err != nil {
		d.log.Warn().Err(err).Str("class_id", c.ID).Msg("class cache invalidation failed")
	}
	return nil
}
