package commands

import (
	"errors"

	"orders/internal/pkg/errs"
	"orders/internal/pkg/guard"
)

var (
	ErrCreateDraftCommandIsNotConstructed = errors.New(
		"CreateDraftCommand must be created via NewCreateDraftCommand constructor",
	)
)

// CreateDraftCommand represents a request to create a new draft order for a
// tenant. The idempotency key scopes "same logical request" across client
// retries: replays of the same (tenant, key) pair return the original
// response without re-executing any side effect.
type CreateDraftCommand struct { //nolint:recvcheck //using for validation
	tenantID       string
	idempotencyKey string

	guard guard.ConstructorGuard
}

// NewCreateDraftCommand creates a command to create a draft order.
// Both the tenant and the idempotency key are required.
func NewCreateDraftCommand(tenantID, idempotencyKey string) (CreateDraftCommand, error) {
	cmd := CreateDraftCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setTenantID(tenantID),
		cmd.setIdempotencyKey(idempotencyKey),
	); err != nil {
		return CreateDraftCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateDraftCommand) Validate() error {
	return c.guard.Validate(ErrCreateDraftCommandIsNotConstructed)
}

// TenantID returns the tenant creating the order.
func (c CreateDraftCommand) TenantID() string {
	return c.tenantID
}

// IdempotencyKey returns the client-supplied idempotency key.
func (c CreateDraftCommand) IdempotencyKey() string {
	return c.idempotencyKey
}

func (c *CreateDraftCommand) setTenantID(tenantID string) error {
	if tenantID == "" {
		return errs.NewValueIsRequiredError("tenantID")
	}
	c.tenantID = tenantID
	return nil
}

func (c *CreateDraftCommand) setIdempotencyKey(key string) error {
	if key == "" {
		return errs.NewValueIsRequiredError("idempotencyKey")
	}
	c.idempotencyKey = key
	return nil
}
