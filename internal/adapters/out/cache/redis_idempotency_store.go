package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

// claimSentinel is the value a claimed-but-unfinished key holds. It can never
// be confused with a stored record because records are JSON objects.
const claimSentinel = "__in_flight__"

// RedisIdempotencyStore implements ports.IdempotencyStore on Redis.
//
// The claim primitive is SETNX: the first request to claim a key wins and
// does the work; contenders either replay the finished record or see the
// in-flight sentinel. This closes the check-then-act race where two
// concurrent requests with the same key both miss the cache and both create
// an order.
type RedisIdempotencyStore struct {
	client *redis.Client
}

// NewRedisIdempotencyStore creates an idempotency store backed by Redis.
func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

func redisKey(tenantID, key string) string {
	return "idempotency:" + tenantID + ":" + key
}

// Lookup returns the stored response for the key, or nil on a miss.
// A key that is claimed but not yet finished surfaces as an
// IdempotencyInFlightError so callers can report the conflict instead of
// replaying a half-written record.
func (s *RedisIdempotencyStore) Lookup(ctx context.Context, tenantID, key string) (*ports.StoredResponse, error) {
	raw, err := s.client.Get(ctx, redisKey(tenantID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if raw == claimSentinel {
		return nil, errs.NewIdempotencyInFlightError(key)
	}

	var record ports.StoredResponse
	if err = json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, err
	}

	return &record, nil
}

// Claim atomically marks the key as in-flight. Returns false when the key is
// already held, either as a claim or as a completed record. The TTL bounds
// how long a crashed worker can wedge the key.
func (s *RedisIdempotencyStore) Claim(ctx context.Context, tenantID, key string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, redisKey(tenantID, key), claimSentinel, ttl).Result()
}

// Store overwrites the claim with the final response record.
// Entries are written once and never mutated; they are only re-read or left
// to expire.
func (s *RedisIdempotencyStore) Store(ctx context.Context, tenantID, key string, response json.RawMessage, statusCode int, ttl time.Duration) error {
	record := ports.StoredResponse{
		Response:   response,
		StatusCode: statusCode,
		CreatedAt:  time.Now().UTC(),
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, redisKey(tenantID, key), raw, ttl).Err()
}

// Release deletes a claim after a failed execution so a client retry can run
// the operation again.
func (s *RedisIdempotencyStore) Release(ctx context.Context, tenantID, key string) error {
	return s.client.Del(ctx, redisKey(tenantID, key)).Err()
}
