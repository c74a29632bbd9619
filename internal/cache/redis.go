package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/geocoder89/hbnb/internal/observability"
	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type Redis struct {
	redisdb *redis.Client
	ttl     time.Duration
	prom    *observability.Prom
}

func NewRedis(cfg RedisConfig, ttl time.Duration, prom *observability.Prom) *Redis {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Redis{redisdb: redisdb, ttl: ttl, prom: prom}
}

// this ping function checks redis connectivity
func (r *Redis) Ping(ctx context.Context) error {
	return r.redisdb.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	return r.redisdb.Close()
}

func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.redisdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.prom.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		r.prom.ObserveCache("redis", "error")
		return false, err
	}

	r.prom.ObserveCache("redis", "hit")
	return true, json.Unmarshal(v, dst)
}

func (r *Redis) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if ttl <= 0 {
		ttl = r.ttl
	}

	r.prom.ObserveCache("redis", "set")
	return r.redisdb.Set(ctx, key, b, ttl).Err()
}

func (r *Redis) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	r.prom.ObserveCache("redis", "del")
	return r.redisdb.Del(ctx, keys...).Err()
}
