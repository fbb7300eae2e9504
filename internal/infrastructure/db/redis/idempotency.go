package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyTTL = 24 * time.Hour
	// reservationTTL bounds how long a key stays held by a request that
	// never commits or releases it.
	reservationTTL = time.Minute
)

var (
	commitScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)
	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)
)

// IdempotencyStore maps (owner, Idempotency-Key) pairs to the order they created.
// Key format: idem:<owner_id>:<key>
type IdempotencyStore struct {
	client     *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given Redis client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: idempotencyTTL, pendingTTL: reservationTTL}
}

// Reserve claims key for orderID with SETNX. When the key is taken, the order
// id already holding it is returned.
func (s *IdempotencyStore) Reserve(ctx context.Context, ownerID, key, orderID string) (string, error) {
	k := s.key(ownerID, key)
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.client.SetNX(ctx, k, orderID, s.pendingTTL).Result()
		if err != nil {
			return "", fmt.Errorf("idempotency reserve: %w", err)
		}
		if ok {
			return orderID, nil
		}
		holder, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			// expired between SETNX and GET
			continue
		}
		if err != nil {
			return "", fmt.Errorf("idempotency reserve: %w", err)
		}
		return holder, nil
	}
	return "", fmt.Errorf("idempotency reserve: key %s kept changing", k)
}

// Commit extends a reservation held by orderID to the full replay window.
func (s *IdempotencyStore) Commit(ctx context.Context, ownerID, key, orderID string) error {
	err := commitScript.Run(ctx, s.client, []string{s.key(ownerID, key)}, orderID, s.ttl.Milliseconds()).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("idempotency commit: %w", err)
	}
	return nil
}

// Release deletes the key if orderID still holds it.
func (s *IdempotencyStore) Release(ctx context.Context, ownerID, key, orderID string) error {
	err := releaseScript.Run(ctx, s.client, []string{s.key(ownerID, key)}, orderID).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) key(ownerID, key string) string {
	return fmt.Sprintf("idem:%s:%s", ownerID, key)
}
