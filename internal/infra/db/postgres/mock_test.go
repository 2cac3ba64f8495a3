//go:build !integration

package postgres

import (
	"context"
	"time"

	"class-access/internal/domain/model"
	"class-access/internal/domain/ports/repository"
	red "class-access/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerClassRepo mocks the database repository that the Class decorator wraps.
type mockInnerClassRepo struct {
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Class, error)
	SaveFunc     func(ctx context.Context, tx repository.Tx, c *model.Class) error
}

func (m *mockInnerClassRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Class, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerClassRepo) Save(ctx context.Context, tx repository.Tx, c *model.Class) error {
	return m.SaveFunc(ctx, tx, c)
}

// mockRedisClient mocks our Redis client wrapper. Unset funcs behave like an empty cache.
type mockRedisClient struct {
	GetFunc func(ctx context.Context, key string) (string, error)
	SetFunc func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc func(ctx context.Context, keys ...string) error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc == nil {
		return "", red.ErrCacheMiss
	}
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return nil }
func (m *mockRedisClient) Close() error                   { return nil }
