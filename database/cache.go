package database

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ctfcore/config"
	"ctfcore/metrics"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

// DefaultCacheTTL bounds how long resolved instances and listings stay
// cached. Short on purpose: challenge edits must show up quickly.
const DefaultCacheTTL = 5 * time.Minute

// InitCache initializes the Redis connection used as cache layer
func InitCache() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.RedisHost + ":" + config.RedisPort,
		Password: config.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := RDB.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	log.Println("Redis connection successfully established.")
}

// GetFromCache reads a JSON value from the cache. A cache error is
// reported as a miss, never as a failure.
func GetFromCache(ctx context.Context, key string, target interface{}) (bool, error) {
	if RDB == nil {
		return false, nil
	}

	data, err := RDB.Get(ctx, key).Bytes()
	if err != nil {
		metrics.CacheMisses.Inc()
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(data, target); err != nil {
		metrics.CacheMisses.Inc()
		return false, err
	}

	metrics.CacheHits.Inc()
	return true, nil
}

// SetToCache stores a JSON value in the cache with the default TTL
func SetToCache(ctx context.Context, key string, value interface{}) error {
	if RDB == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return RDB.Set(ctx, key, data, DefaultCacheTTL).Err()
}
