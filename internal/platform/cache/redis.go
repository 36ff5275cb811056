package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"opstats/internal/platform/config"
	perr "opstats/internal/platform/errors"
)

// Redis is the production Store, a thin shim over go-redis
type Redis struct {
	rdb *redis.Client
}

// NewRedis dials the cache from REDIS_* env. Fails fast: a service that
// cannot reach its cache at boot is misconfigured, not degraded
func NewRedis(ctx context.Context, cfg config.Conf) (*Redis, error) {
	opts := &redis.Options{
		Addr:     cfg.MayString("REDIS_ADDR", "localhost:6379"),
		Password: cfg.MayString("REDIS_PASSWORD", ""),
		DB:       cfg.MayInt("REDIS_DB", 0),
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, perr.Unavailablef("redis ping %s: %v", opts.Addr, err)
	}
	return &Redis{rdb: rdb}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, Miss
	}
	if err != nil {
		return nil, perr.Unavailablef("redis get %q: %v", key, err)
	}
	return raw, nil
}

func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		return perr.Unavailablef("redis set %q: %v", key, err)
	}
	return nil
}

func (r *Redis) Close() error { return r.rdb.Close() }
