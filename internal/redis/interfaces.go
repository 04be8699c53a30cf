package redis

import (
	"context"
	"time"

	"dispatch/internal/domain"
)

// RideCacheInterface defines the interface for ride caching.
type RideCacheInterface interface {
	GetRide(ctx context.Context, rideID string) (*domain.Ride, error)
	SetRide(ctx context.Context, ride *domain.Ride) error
	InvalidateRide(ctx context.Context, rideID string) error
}

// LogisticsCacheInterface defines the interface for logistics-config caching.
type LogisticsCacheInterface interface {
	GetLogistics(ctx context.Context) (*domain.LogisticsConfig, error)
	SetLogistics(ctx context.Context, cfg *domain.LogisticsConfig) error
	InvalidateLogistics(ctx context.Context) error
}

// SchedulerLockInterface defines the interface for the scheduler pass lock.
type SchedulerLockInterface interface {
	AcquireSchedulerLock(ctx context.Context, ttl time.Duration) (bool, error)
	ReleaseSchedulerLock(ctx context.Context) error
}

// Ensure concrete types implement interfaces.
var (
	_ RideCacheInterface      = (*CacheStore)(nil)
	_ LogisticsCacheInterface = (*CacheStore)(nil)
	_ SchedulerLockInterface  = (*LockStore)(nil)
)
