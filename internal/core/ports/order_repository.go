package ports

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Tenant scoping is a mandatory parameter on every read: an order belonging
// to a different tenant is reported as not found, indistinguishable from an
// unknown id, so callers can never probe for other tenants' data.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate using a
	// conditional write on the aggregate's pre-transition version.
	// A concurrent writer that got there first surfaces as a
	// VersionConflictError; the update is never silently retried.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id within the given tenant scope.
	Get(ctx context.Context, tenantID string, id kernel.UUID) (*order.Order, error)

	// GetForUpdate retrieves an order by id within the given tenant scope,
	// holding a row lock for the remainder of the transaction. The wait for
	// the lock is bounded; an expired wait surfaces as a LockTimeoutError.
	GetForUpdate(ctx context.Context, tenantID string, id kernel.UUID) (*order.Order, error)
}
