package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/user/skillgen-service/internal/repository"
)

const runLockPrefix = "skillgen:lock:"

// releaseScript deletes the lock only if it still carries the caller's token,
// so a run whose lock expired cannot free a lock taken by a newer run.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLockRepoImpl provides a concrete implementation for the RunLockRepository interface using Redis.
type RunLockRepoImpl struct {
	client *redis.Client
}

// NewRunLockRepo creates a new instance of RunLockRepoImpl.
func NewRunLockRepo(client *redis.Client) *RunLockRepoImpl {
	return &RunLockRepoImpl{client: client}
}

var _ repository.RunLockRepository = (*RunLockRepoImpl)(nil)

func (r *RunLockRepoImpl) generateKey(key string) string {
	return fmt.Sprintf("%s%s", runLockPrefix, key)
}

// Acquire sets the lock key with SET NX and an expiry so a crashed run cannot hold it forever.
func (r *RunLockRepoImpl) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.New().String()
	ok, err := r.client.SetNX(ctx, r.generateKey(key), token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", repository.ErrLockHeld
	}
	return token, nil
}

// Release removes the lock if token still owns it.
func (r *RunLockRepoImpl) Release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, r.client, []string{r.generateKey(key)}, token).Err()
}
