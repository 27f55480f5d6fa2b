package repository

import (
	"context"
	"time"
)

// RunLockRepository serializes pipeline runs per project.
type RunLockRepository interface {
	// Acquire takes the lock for key or returns ErrLockHeld. The returned token releases it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	// Release frees the lock if it is still held with token.
	Release(ctx context.Context, key, token string) error
}
