package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// redisDialTimeout bounds the reachability check made by Open.
const redisDialTimeout = 3 * time.Second

// KV is the persistence port: opaque string values under fixed keys.
// A missing key is reported as ok == false with a nil error.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Storage drivers selectable from config.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Options selects and configures a KV driver.
type Options struct {
	Driver      string
	Path        string // sqlite database file
	RedisAddr   string
	RedisDB     int
	RedisPrefix string
}

// Open constructs the KV driver named by opts.Driver. An empty driver
// means SQLite.
func Open(opts Options) (KV, error) {
	switch strings.ToLower(opts.Driver) {
	case "", DriverSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite driver requires a database path")
		}
		return OpenSQLite(opts.Path)
	case DriverRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis driver requires an address")
		}
		kv := NewRedisKV(opts.RedisAddr, opts.RedisDB, opts.RedisPrefix)
		ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
		defer cancel()
		if err := kv.Ping(ctx); err != nil {
			_ = kv.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", opts.RedisAddr, err)
		}
		return kv, nil
	case DriverMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
