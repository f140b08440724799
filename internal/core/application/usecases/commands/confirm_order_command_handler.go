package commands

import (
	"context"
	"time"

	"orders/internal/core/domain/model/outbox"
)

// ConfirmOrderCommandHandler moves a draft order to confirmed.
//
// Version checking happens twice: once in memory against the freshly read
// aggregate, and again at write time through the repository's conditional
// update. The second check is what actually closes the race with concurrent
// writers; the first just avoids a pointless transition for stale callers.
type ConfirmOrderCommandHandler struct {
	uowFactory UoWFactory
}

// NewConfirmOrderCommandHandler creates a handler for order confirmation.
func NewConfirmOrderCommandHandler(uowFactory UoWFactory) ConfirmOrderCommandHandler {
	return ConfirmOrderCommandHandler{uowFactory: uowFactory}
}

// Handle processes the confirm order command.
func (h *ConfirmOrderCommandHandler) Handle(ctx context.Context, cmd ConfirmOrderCommand) (OrderResponse, error) {
	if err := cmd.Validate(); err != nil {
		return OrderResponse{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return OrderResponse{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, cmd.TenantID(), cmd.OrderID())
	if err != nil {
		return OrderResponse{}, err
	}

	if err = aggregate.CheckVersion(cmd.ExpectedVersion()); err != nil {
		return OrderResponse{}, err
	}

	now := time.Now().UTC()

	if err = aggregate.Confirm(cmd.TotalCents(), now); err != nil {
		return OrderResponse{}, err
	}

	message, err := outbox.NewMessage(outbox.EventTypeConfirmed, aggregate, now)
	if err != nil {
		return OrderResponse{}, err
	}

	if err = uow.OrderRepository().Update(ctx, aggregate); err != nil {
		return OrderResponse{}, err
	}

	if err = uow.OutboxRepository().Add(ctx, message); err != nil {
		return OrderResponse{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return OrderResponse{}, err
	}

	return NewOrderResponse(aggregate), nil
}
