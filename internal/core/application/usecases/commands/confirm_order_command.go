package commands

import (
	"errors"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var (
	ErrConfirmOrderCommandIsNotConstructed = errors.New(
		"ConfirmOrderCommand must be created via NewConfirmOrderCommand constructor",
	)
)

// ConfirmOrderCommand represents a request to move a draft order to the
// confirmed state. ExpectedVersion carries the version token the caller read
// last; the transition only applies if the stored order still has it.
type ConfirmOrderCommand struct { //nolint:recvcheck //using for validation
	orderID         kernel.UUID
	tenantID        string
	expectedVersion int
	totalCents      int64

	guard guard.ConstructorGuard
}

// NewConfirmOrderCommand creates a command to confirm a draft order.
func NewConfirmOrderCommand(orderID kernel.UUID, tenantID string, expectedVersion int, totalCents int64) (ConfirmOrderCommand, error) {
	cmd := ConfirmOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTenantID(tenantID),
		cmd.setExpectedVersion(expectedVersion),
		cmd.setTotalCents(totalCents),
	); err != nil {
		return ConfirmOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ConfirmOrderCommand) Validate() error {
	return c.guard.Validate(ErrConfirmOrderCommandIsNotConstructed)
}

// OrderID returns the id of the order to confirm.
func (c ConfirmOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// TenantID returns the tenant scope of the request.
func (c ConfirmOrderCommand) TenantID() string {
	return c.tenantID
}

// ExpectedVersion returns the version token supplied by the caller.
func (c ConfirmOrderCommand) ExpectedVersion() int {
	return c.expectedVersion
}

// TotalCents returns the order total to record at confirmation.
func (c ConfirmOrderCommand) TotalCents() int64 {
	return c.totalCents
}

func (c *ConfirmOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderID", err)
	}
	c.orderID = orderID
	return nil
}

func (c *ConfirmOrderCommand) setTenantID(tenantID string) error {
	if tenantID == "" {
		return errs.NewValueIsRequiredError("tenantID")
	}
	c.tenantID = tenantID
	return nil
}

func (c *ConfirmOrderCommand) setExpectedVersion(version int) error {
	if version < 1 {
		return errs.NewValueIsInvalidError("expectedVersion")
	}
	c.expectedVersion = version
	return nil
}

func (c *ConfirmOrderCommand) setTotalCents(totalCents int64) error {
	if totalCents < 0 {
		return errs.NewValueIsInvalidError("totalCents")
	}
	c.totalCents = totalCents
	return nil
}
