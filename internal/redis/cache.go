package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"dispatch/internal/domain"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	RideCacheTTL      = 10 * time.Second // rides mutate during dispatch and recomputation
	LogisticsCacheTTL = 60 * time.Second // settings change rarely
)

// Key prefixes
const (
	rideCachePrefix   = "cache:ride:"
	logisticsCacheKey = "cache:logistics"
)

// GetRide retrieves a ride from cache. A nil ride with nil error is a miss.
func (s *CacheStore) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	data, err := s.client.Get(ctx, rideCachePrefix+rideID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var ride domain.Ride
	if err := json.Unmarshal(data, &ride); err != nil {
		return nil, err
	}
	return &ride, nil
}

// SetRide stores a ride in cache.
func (s *CacheStore) SetRide(ctx context.Context, ride *domain.Ride) error {
	data, err := json.Marshal(ride)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, rideCachePrefix+ride.ID, data, RideCacheTTL).Err()
}

// InvalidateRide removes a ride from cache. Every ride mutation calls this
// so stale step sequences are never served.
func (s *CacheStore) InvalidateRide(ctx context.Context, rideID string) error {
	return s.client.Del(ctx, rideCachePrefix+rideID).Err()
}

// GetLogistics retrieves the logistics configuration from cache.
func (s *CacheStore) GetLogistics(ctx context.Context) (*domain.LogisticsConfig, error) {
	data, err := s.client.Get(ctx, logisticsCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cfg domain.LogisticsConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetLogistics stores the logistics configuration in cache.
func (s *CacheStore) SetLogistics(ctx context.Context, cfg *domain.LogisticsConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, logisticsCacheKey, data, LogisticsCacheTTL).Err()
}

// InvalidateLogistics removes the logistics configuration from cache.
func (s *CacheStore) InvalidateLogistics(ctx context.Context) error {
	return s.client.Del(ctx, logisticsCacheKey).Err()
}
