package repository

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist or is not visible to the caller.
	ErrNotFound = errors.New("record not found")
	// ErrLockHeld is returned when a run lock is already held by another run.
	ErrLockHeld = errors.New("lock is held by another run")
	// ErrCacheMiss is returned by caches when no entry exists for a key.
	ErrCacheMiss = errors.New("cache miss")
)
