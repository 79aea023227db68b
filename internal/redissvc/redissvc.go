package redissvc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CategoriesKey holds the JSON-encoded distinct category list.
const CategoriesKey = "catalog:categories"

type RedisService struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisService wraps rdb. Cached values expire after ttl; zero keeps them
// until the next invalidation.
func NewRedisService(rdb *redis.Client, ttl time.Duration) *RedisService {
	return &RedisService{
		rdb: rdb,
		ttl: ttl,
	}
}

func (a *RedisService) Rdb() *redis.Client {
	return a.rdb
}

func (a *RedisService) Ping(ctx context.Context) error {
	return a.rdb.Ping(ctx).Err()
}

func (a *RedisService) GetCategories(ctx context.Context) ([]string, bool, error) {
	data, err := a.rdb.Get(ctx, CategoriesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var categories []string
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, false, err
	}
	return categories, true, nil
}

func (a *RedisService) SetCategories(ctx context.Context, categories []string) error {
	if categories == nil {
		categories = []string{}
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	return a.rdb.Set(ctx, CategoriesKey, data, a.ttl).Err()
}

func (a *RedisService) InvalidateCategories(ctx context.Context) error {
	return a.rdb.Del(ctx, CategoriesKey).Err()
}
