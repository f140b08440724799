package commands

import (
	"errors"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var (
	ErrCloseOrderCommandIsNotConstructed = errors.New(
		"CloseOrderCommand must be created via NewCloseOrderCommand constructor",
	)
)

// CloseOrderCommand represents a request to move a confirmed order to the
// closed terminal state. Closing carries no version token: the handler reads
// the row under an exclusive lock, so the transition always applies to the
// current state.
type CloseOrderCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	tenantID string

	guard guard.ConstructorGuard
}

// NewCloseOrderCommand creates a command to close a confirmed order.
func NewCloseOrderCommand(orderID kernel.UUID, tenantID string) (CloseOrderCommand, error) {
	cmd := CloseOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTenantID(tenantID),
	); err != nil {
		return CloseOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CloseOrderCommand) Validate() error {
	return c.guard.Validate(ErrCloseOrderCommandIsNotConstructed)
}

// OrderID returns the id of the order to close.
func (c CloseOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// TenantID returns the tenant scope of the request.
func (c CloseOrderCommand) TenantID() string {
	return c.tenantID
}

func (c *CloseOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderID", err)
	}
	c.orderID = orderID
	return nil
}

func (c *CloseOrderCommand) setTenantID(tenantID string) error {
	if tenantID == "" {
		return errs.NewValueIsRequiredError("tenantID")
	}
	c.tenantID = tenantID
	return nil
}
