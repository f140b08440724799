// Package queries contains read-only operations that retrieve system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries bypass the domain model and read projections directly from the
// database for efficiency.
package queries

import (
	"errors"
	"time"

	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

const (
	// DefaultPageLimit applies when the caller does not specify a page size.
	DefaultPageLimit = 20

	// MaxPageLimit caps the page size regardless of what the caller asks for.
	MaxPageLimit = 100
)

var (
	ErrListOrdersQueryIsNotConstructed = errors.New(
		"ListOrdersQuery must be created via NewListOrdersQuery constructor",
	)
)

// ListOrdersQuery retrieves a tenant's orders newest first, one page at a
// time. The cursor is the opaque keyset token from a previous page; empty
// means start from the top.
type ListOrdersQuery struct { //nolint:recvcheck //using for validation
	tenantID string
	limit    int
	cursor   string

	guard guard.ConstructorGuard
}

// NewListOrdersQuery creates a query for one page of a tenant's orders.
// A non-positive limit falls back to DefaultPageLimit; anything above
// MaxPageLimit is clamped.
func NewListOrdersQuery(tenantID string, limit int, cursor string) (ListOrdersQuery, error) {
	if tenantID == "" {
		return ListOrdersQuery{}, errs.NewValueIsRequiredError("tenantID")
	}

	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	return ListOrdersQuery{
		tenantID: tenantID,
		limit:    limit,
		cursor:   cursor,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

// TenantID returns the tenant whose orders are listed.
func (q ListOrdersQuery) TenantID() string {
	return q.tenantID
}

// Limit returns the effective page size.
func (q ListOrdersQuery) Limit() int {
	return q.limit
}

// Cursor returns the opaque continuation token, empty for the first page.
func (q ListOrdersQuery) Cursor() string {
	return q.cursor
}

// OrderView is the read-model projection of one order row.
type OrderView struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	Status     string    `json:"status"`
	Version    int       `json:"version"`
	TotalCents *int64    `json:"totalCents,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ListOrdersResponse is one page of orders. NextCursor is present only when
// more rows exist beyond this page.
type ListOrdersResponse struct {
	Items      []OrderView `json:"items"`
	NextCursor string      `json:"nextCursor,omitempty"`
}
