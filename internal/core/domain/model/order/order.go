package order

import (
	"errors"
	"fmt"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through NewOrder or RestoreOrder. This ensures all orders are properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")
)

// Order represents a tenant-scoped order record. It is the aggregate root that
// manages the order lifecycle from draft through confirmation to closure.
//
// Order follows these invariants:
//   - Must have a valid unique identifier and a non-empty tenant
//   - Status and version change together and only via the defined transitions
//   - Version starts at 1 and increments by exactly 1 per successful transition
//   - TotalCents is unset until Confirm and immutable afterwards
//   - CreatedAt is immutable; UpdatedAt refreshes on every mutation
//
// The struct uses private fields to ensure encapsulation and maintains its
// invariants through validated methods. Transition methods never touch
// persistence; callers persist the new state together with the matching
// outbox row in one atomic unit of work.
type Order struct {
	// id is the unique identifier for the order, assigned at creation
	id kernel.UUID

	// tenantID scopes every read and write; it never changes
	tenantID string

	// status is the current state in the order lifecycle
	status Status

	// version is the optimistic-lock token
	version int

	// totalCents is set exactly once during Confirm (nil while draft)
	totalCents *int64

	// createdAt and updatedAt are UTC timestamps
	createdAt time.Time
	updatedAt time.Time

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewOrder creates a new draft Order for the given tenant.
//
// The order starts in Draft status with version 1 and no total. Both
// timestamps are set to now (normalized to UTC). Returns a validation error
// if the id is invalid or the tenant is empty.
func NewOrder(id kernel.UUID, tenantID string, now time.Time) (*Order, error) {
	o := &Order{
		status:        Draft,
		version:       1,
		createdAt:     now.UTC(),
		updatedAt:     now.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setTenantID(tenantID),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an Order from persistence.
//
// Unlike NewOrder it accepts any valid status and version, but still enforces
// the structural invariants: valid id, non-empty tenant, valid status, and a
// version of at least 1. Repositories use this to rehydrate aggregates; corrupt
// rows fail here instead of leaking invalid aggregates into the domain.
func RestoreOrder(
	id kernel.UUID,
	tenantID string,
	status Status,
	version int,
	totalCents *int64,
	createdAt time.Time,
	updatedAt time.Time,
) (*Order, error) {
	o := &Order{
		status:        status,
		version:       version,
		createdAt:     createdAt.UTC(),
		updatedAt:     updatedAt.UTC(),
		isConstructed: true,
	}

	if totalCents != nil {
		v := *totalCents
		o.totalCents = &v
	}

	if err := errors.Join(
		o.setID(id),
		o.setTenantID(tenantID),
		status.Validate(),
		o.validateVersion(version),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
// Returns ErrOrderIsNotConstructed for a directly instantiated struct.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// TenantID returns the tenant that owns the order.
func (o *Order) TenantID() string {
	return o.tenantID
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// Version returns the optimistic-lock token.
// It starts at 1 and increments by exactly 1 on every successful transition.
func (o *Order) Version() int {
	return o.version
}

// TotalCents returns the confirmed total, or nil while the order is a draft.
func (o *Order) TotalCents() *int64 {
	if o.totalCents == nil {
		return nil
	}
	v := *o.totalCents
	return &v
}

// CreatedAt returns the immutable creation timestamp (UTC).
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// UpdatedAt returns the timestamp of the last mutation (UTC).
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// CheckVersion compares the caller's expected version against the current one.
//
// Returns nil on an exact match, otherwise a VersionConflictError carrying
// both versions. Callers must evaluate this inside the same unit of work as
// the eventual write, before running the transition. A mismatch is never
// retried automatically.
func (o *Order) CheckVersion(expected int) error {
	if o.version != expected {
		return errs.NewVersionConflictError(expected, o.version)
	}
	return nil
}

// Confirm fixes the order total and moves the order to Confirmed.
//
// Requires the current status to be Draft and totalCents to be non-negative.
// On success the total is stored, the version increments by 1, and updatedAt
// refreshes. The total is immutable afterwards.
func (o *Order) Confirm(totalCents int64, now time.Time) error {
	if totalCents < 0 {
		return errs.NewValueIsInvalidErrorWithCause("totalCents",
			fmt.Errorf("%d is negative", totalCents))
	}

	newStatus, err := o.status.Confirm()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.totalCents = &totalCents
	o.version++
	o.updatedAt = now.UTC()
	return nil
}

// Close moves the order to its terminal Closed status.
//
// Requires the current status to be Confirmed. On success the version
// increments by 1 and updatedAt refreshes. No mutation is possible afterwards.
func (o *Order) Close(now time.Time) error {
	newStatus, err := o.status.Close()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.version++
	o.updatedAt = now.UTC()
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setTenantID(tenantID string) error {
	if tenantID == "" {
		return errs.NewValueIsRequiredError("tenantID")
	}
	o.tenantID = tenantID
	return nil
}

func (o *Order) validateVersion(version int) error {
	if version < 1 {
		return errs.NewValueIsInvalidErrorWithCause("version",
			fmt.Errorf("%d is less than 1", version))
	}
	return nil
}
