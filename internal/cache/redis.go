// Package cache provides a cache-aside layer with a distributed-lock
// stampede guard over Redis, used to memoise isochrone unions and computed
// routes so concurrent identical requests don't recompute the same
// expensive polygon/graph-search work.
package cache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

// Config holds Redis configuration.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
	MutexTTL time.Duration
}

// LoadConfigFromEnv loads Redis configuration from environment variables.
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, _ := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	mutexTTL, _ := time.ParseDuration(getEnv("CACHE_MUTEX_TTL", "5s"))

	return &Config{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     port,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
		TTL:      ttl,
		MutexTTL: mutexTTL,
	}
}

// GetClient returns the global Redis client (singleton pattern).
func GetClient() (*redis.Client, error) {
	clientOnce.Do(func() {
		config := LoadConfigFromEnv()

		opts := &redis.Options{
			Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
			Password:     config.Password,
			DB:           config.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 2,
		}

		if getEnv("REDIS_TLS_ENABLED", "false") == "true" {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}

		client = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			clientErr = fmt.Errorf("failed to connect to Redis: %w", err)
			return
		}
	})

	return client, clientErr
}

// Close closes the Redis client.
func Close() {
	if client != nil {
		client.Close()
	}
}

// IsochroneKey builds a deterministic cache key for an isochrone union over
// one or more spots at a given (minute, walk, start_time).
func IsochroneKey(spotIDs []string, minute, walkM int, startTime string) string {
	data := fmt.Sprintf("%v|%d|%d|%s", spotIDs, minute, walkM, startTime)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("isochrone:%x", hash[:8])
}

// RouteKey builds a deterministic cache key for a computed public-transit
// route, optionally fingerprinted against a candidate CarRoute.
func RouteKey(fromLat, fromLon, toLat, toLon float64, startTime, carOutputFingerprint string) string {
	data := fmt.Sprintf("%.6f,%.6f,%.6f,%.6f,%s,%s", fromLat, fromLon, toLat, toLon, startTime, carOutputFingerprint)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("route:%x", hash[:8])
}

// LockKey generates a mutex lock key for a given cache key.
func LockKey(key string) string {
	return fmt.Sprintf("lock:%s", key)
}

// Get retrieves and JSON-decodes a cached value into dst. Returns (false,
// nil) on a cache miss.
func Get(ctx context.Context, key string, dst any) (bool, error) {
	c, err := GetClient()
	if err != nil {
		return false, err
	}

	data, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}
	return true, nil
}

// Set JSON-encodes and caches a value under key with the given TTL.
func Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c, err := GetClient()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cached value: %w", err)
	}

	return c.Set(ctx, key, data, ttl).Err()
}

// AcquireLock attempts to acquire a distributed lock. Returns true if the
// lock was acquired, false if already held.
func AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	c, err := GetClient()
	if err != nil {
		return false, err
	}
	return c.SetNX(ctx, key, "1", ttl).Result()
}

// ReleaseLock releases a distributed lock.
func ReleaseLock(ctx context.Context, key string) error {
	c, err := GetClient()
	if err != nil {
		return err
	}
	return c.Del(ctx, key).Err()
}

// WaitForLock polls until a lock is released, then retrieves the cached
// result. Implements the "wait for the in-flight computation" side of the
// cache-aside pattern, avoiding a thundering herd on expensive isochrone or
// transit-search requests.
func WaitForLock(ctx context.Context, key string, maxWait time.Duration, dst any) (bool, error) {
	c, err := GetClient()
	if err != nil {
		return false, err
	}

	lockKey := LockKey(key)
	deadline := time.Now().Add(maxWait)

	for time.Now().Before(deadline) {
		exists, err := c.Exists(ctx, lockKey).Result()
		if err != nil {
			return false, err
		}

		if exists == 0 {
			return Get(ctx, key, dst)
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}

	return false, fmt.Errorf("timeout waiting for lock %s", key)
}

// HealthCheck performs a health check on the Redis connection.
func HealthCheck(ctx context.Context) error {
	c, err := GetClient()
	if err != nil {
		return fmt.Errorf("redis client not initialized: %w", err)
	}
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
