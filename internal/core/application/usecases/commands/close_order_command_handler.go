package commands

import (
	"context"
	"time"

	"orders/internal/core/domain/model/outbox"
)

// CloseOrderCommandHandler moves a confirmed order to the closed terminal
// state.
//
// Closing reads the row under an exclusive lock with a bounded wait, so it
// serializes against concurrent confirms and closes of the same order. An
// expired wait surfaces to the caller as a retryable LockTimeoutError
// instead of stalling the request indefinitely.
type CloseOrderCommandHandler struct {
	uowFactory UoWFactory
}

// NewCloseOrderCommandHandler creates a handler for order closing.
func NewCloseOrderCommandHandler(uowFactory UoWFactory) CloseOrderCommandHandler {
	return CloseOrderCommandHandler{uowFactory: uowFactory}
}

// Handle processes the close order command.
func (h *CloseOrderCommandHandler) Handle(ctx context.Context, cmd CloseOrderCommand) (OrderResponse, error) {
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

	aggregate, err := uow.OrderRepository().GetForUpdate(ctx, cmd.TenantID(), cmd.OrderID())
	if err != nil {
		return OrderResponse{}, err
	}

	now := time.Now().UTC()

	if err = aggregate.Close(now); err != nil {
		return OrderResponse{}, err
	}

	message, err := outbox.NewMessage(outbox.EventTypeClosed, aggregate, now)
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
