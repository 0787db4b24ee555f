package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// RedisBackend is the subset of database.RedisClient the store needs.
type RedisBackend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Health(ctx context.Context) error
}

// RedisStore keeps values as plain Redis strings without expiry.
type RedisStore struct {
	client RedisBackend
}

func NewRedisStore(client RedisBackend) *RedisStore {
	return &RedisStore{client: client}
}

// Get treats an empty value as missing; the repository never writes "".
func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key)
	if err != nil {
		return "", false, errors.Wrap(err, "failed to read from redis")
	}
	if v == "" {
		return "", false, nil
	}
	return v, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0); err != nil {
		return errors.Wrap(err, "failed to write to redis")
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Delete(ctx, keys...); err != nil {
		return errors.Wrap(err, "failed to delete from redis")
	}
	return nil
}

func (r *RedisStore) Health(ctx context.Context) error {
	return r.client.Health(ctx)
}

func (r *RedisStore) Name() string { return "redis" }
