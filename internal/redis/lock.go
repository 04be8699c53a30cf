package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const schedulerLockKey = "lock:scheduler:pass"

// LockStore provides distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireSchedulerLock attempts to acquire the scheduler pass lock. Only
// one process may run a discovery-and-compute pass at a time; an
// accidentally deployed second instance simply skips its pass.
func (s *LockStore) AcquireSchedulerLock(ctx context.Context, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, schedulerLockKey, "1", ttl).Result()
}

// ReleaseSchedulerLock releases the scheduler pass lock.
func (s *LockStore) ReleaseSchedulerLock(ctx context.Context) error {
	return s.client.Del(ctx, schedulerLockKey).Err()
}
