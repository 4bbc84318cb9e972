package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores values as plain redis strings under an optional prefix.
type RedisKV struct {
	client *redis.Client
	ctx    context.Context
	prefix string
}

// NewRedisKV creates a client for addr. The connection is established
// lazily on first use; Open pings it before handing it out.
func NewRedisKV(addr string, db int, prefix string) *RedisKV {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	return &RedisKV{
		client: rdb,
		ctx:    context.Background(),
		prefix: prefix,
	}
}

func (r *RedisKV) key(k string) string { return r.prefix + k }

// Get returns the value stored under key.
func (r *RedisKV) Get(key string) (string, bool, error) {
	val, err := r.client.Get(r.ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores value under key with no expiry.
func (r *RedisKV) Set(key, value string) error {
	return r.client.Set(r.ctx, r.key(key), value, 0).Err()
}

// Delete removes key.
func (r *RedisKV) Delete(key string) error {
	return r.client.Del(r.ctx, r.key(key)).Err()
}

// Ping checks that the server is reachable.
func (r *RedisKV) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client's connections.
func (r *RedisKV) Close() error {
	return r.client.Close()
}
