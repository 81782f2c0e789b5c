package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "olex:"

var (
	redisClient *redis.Client
	enabled     bool
)

// Initialize sets up Redis connection if REDIS_URL is provided
func Initialize(redisURL string) {
	if redisURL == "" {
		logrus.Info("Redis URL not provided, caching disabled")
		enabled = false
		return
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		logrus.WithError(err).Warn("failed to parse Redis URL, caching disabled")
		enabled = false
		return
	}

	redisClient = redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Test connection
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("failed to connect to Redis, caching disabled")
		enabled = false
		return
	}

	enabled = true
	logrus.WithField("addr", opt.Addr).Info("Redis cache initialized")
}

// Enabled reports whether a Redis connection is in use
func Enabled() bool {
	return enabled
}

// Close closes the Redis connection
func Close() {
	if redisClient != nil {
		redisClient.Close()
	}
}

// ReportKey is the cache key of a stored case report
func ReportKey(id string) string {
	return keyPrefix + "report:" + id
}

// ExportKey is the cache key of a rendered export (gpx, geojson) of a case
func ExportKey(id, format string) string {
	return keyPrefix + format + ":" + id
}

// IsMiss reports whether err only means the key was absent
func IsMiss(err error) bool {
	return err == redis.Nil
}

// Set stores a value in cache with expiration
func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !enabled {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return redisClient.Set(ctx, key, data, expiration).Err()
}

// Get retrieves a value from cache. A disabled cache always misses.
func Get(ctx context.Context, key string, dest interface{}) error {
	if !enabled {
		return redis.Nil
	}

	data, err := redisClient.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Delete removes a key from cache
func Delete(ctx context.Context, key string) error {
	if !enabled {
		return nil
	}

	return redisClient.Del(ctx, key).Err()
}

// Store exposes the package cache with a fixed expiration
type Store struct {
	TTL time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{TTL: ttl}
}

func (s *Store) Get(ctx context.Context, key string, dest interface{}) error {
	return Get(ctx, key, dest)
}

func (s *Store) Set(ctx context.Context, key string, value interface{}) error {
	return Set(ctx, key, value, s.TTL)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return Delete(ctx, key)
}
