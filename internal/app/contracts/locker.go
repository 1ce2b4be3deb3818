package contracts

import (
	"context"
	"time"
)

// LockerService guards the per-agenda-per-date booking write window and the
// capacity snapshot leader election.
type LockerService interface {
	// TryLock returns whether the lock was acquired and the fencing value
	// required to release it.
	TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error)
	Unlock(ctx context.Context, key, lockValue string) error
	// Refresh extends the TTL of a lock if owned by lockValue
	Refresh(ctx context.Context, key, lockValue string, expiration time.Duration) error
}
