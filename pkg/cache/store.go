package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sumatoshi-tech/threadlens/pkg/config"
)

// Backends.
const (
	BackendMemory = config.CacheMemory
	BackendRedis  = config.CacheRedis
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Store is a byte-oriented key-value cache.
type Store interface {
	// Get returns the value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Stats() Stats
	Close() error
}

// Stats holds cache performance metrics.
type Stats struct {
	Backend     string `json:"backend"`
	Hits        int64  `json:"hits"`
	Misses      int64  `json:"misses"`
	Entries     int    `json:"entries"`
	CurrentSize int64  `json:"currentSize"`
	MaxSize     int64  `json:"maxSize"`
}

// HitRate returns the cache hit rate (0.0 to 1.0).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

const redisPingTimeout = 5 * time.Second

// Open builds the store named by cfg. A Redis store is pinged before use.
func Open(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		maxBytes, err := cfg.MaxBytes()
		if err != nil {
			return nil, fmt.Errorf("cache size: %w", err)
		}

		return NewLRU(maxBytes, cfg.TTL), nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()

		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()

			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}

		return NewRedisStore(client, cfg.KeyPrefix, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
