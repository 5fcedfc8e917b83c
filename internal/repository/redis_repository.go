package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type redisRepository struct {
	rdb *redis.Client
}

// NewRedisRepository keeps the local store in a Redis instance, for setups
// where several terminals on one machine share a store.
func NewRedisRepository(rdb *redis.Client) Repository {
	return &redisRepository{rdb: rdb}
}

func (r *redisRepository) valueKey(store, key string) string {
	return fmt.Sprintf("webtui:%s:%s", store, key)
}

func (r *redisRepository) Get(ctx context.Context, store, key string) ([]byte, error) {
	if err := checkStore(store); err != nil {
		return nil, err
	}
	value, err := r.rdb.Get(ctx, r.valueKey(store, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("could not read %s/%s: %w", store, key, err)
	}
	return value, nil
}

func (r *redisRepository) Put(ctx context.Context, store, key string, value []byte) error {
	if err := checkStore(store); err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.valueKey(store, key), value, 0).Err(); err != nil {
		return fmt.Errorf("could not write %s/%s: %w", store, key, err)
	}
	return nil
}

func (r *redisRepository) Delete(ctx context.Context, store, key string) error {
	if err := checkStore(store); err != nil {
		return err
	}
	if err := r.rdb.Del(ctx, r.valueKey(store, key)).Err(); err != nil {
		return fmt.Errorf("could not delete %s/%s: %w", store, key, err)
	}
	return nil
}

func (r *redisRepository) Close() error {
	return r.rdb.Close()
}
