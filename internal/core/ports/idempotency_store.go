package ports

import (
	"context"
	"encoding/json"
	"time"
)

// StoredResponse is the cached outcome of a previously processed request.
// Replays return it verbatim, byte for byte.
type StoredResponse struct {
	Response   json.RawMessage `json:"response"`
	StatusCode int             `json:"statusCode"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// IdempotencyStore defines the cache contract keyed by
// (tenantID, client idempotency key).
//
// The store lives outside the primary transactional store and is not
// transactionally consistent with it: Store runs only after the primary
// commit succeeds, never inside the unit of work. Entries expire after a
// configurable TTL; key reuse after expiry is an accepted, bounded risk.
type IdempotencyStore interface {
	// Lookup returns the stored response for the key, or nil on a miss.
	// Read-only and non-blocking.
	Lookup(ctx context.Context, tenantID, key string) (*StoredResponse, error)

	// Claim atomically marks the key as in-flight (set-if-absent).
	// Returns false when another request already holds the key, either as a
	// claim or as a completed record. Claiming before doing the work closes
	// the race where two concurrent requests with the same key both miss
	// the cache and both execute.
	Claim(ctx context.Context, tenantID, key string, ttl time.Duration) (bool, error)

	// Store overwrites the claim with the final response. Called after the
	// primary commit; fire-and-forget with respect to the caller's
	// transaction.
	Store(ctx context.Context, tenantID, key string, response json.RawMessage, statusCode int, ttl time.Duration) error

	// Release deletes a claim after a failed execution so a client retry
	// can run the operation again.
	Release(ctx context.Context, tenantID, key string) error
}
