package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/core/domain/model/outbox"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"
)

// claimTTL bounds how long a crashed request can hold an idempotency key
// in-flight before retries may run the operation again.
const claimTTL = 30 * time.Second

// CreateDraftResult is the outcome of an idempotent create.
// Replayed reports whether the response came from the idempotency cache
// instead of a fresh execution.
type CreateDraftResult struct {
	Response   OrderResponse
	StatusCode int
	Replayed   bool
}

// CreateDraftCommandHandler handles idempotent draft creation.
//
// The flow claims the idempotency key before doing any work (set-if-absent),
// so two concurrent requests with the same key cannot both create an order:
// the loser either replays the winner's finished response or reports the key
// as in-flight. The cache is written only after the primary commit succeeds.
//
// Cache-outage policy: fail open. A Lookup or Claim error is logged loudly
// and treated as a miss — creation proceeds without idempotency protection
// rather than rejecting the request.
type CreateDraftCommandHandler struct {
	uowFactory  UoWFactory
	idempotency ports.IdempotencyStore
	responseTTL time.Duration
	logger      *slog.Logger
}

// NewCreateDraftCommandHandler creates a handler for idempotent draft creation.
// responseTTL is the retention window of cached responses; key reuse after
// expiry is indistinguishable from a new request, an accepted bounded risk.
func NewCreateDraftCommandHandler(
	uowFactory UoWFactory,
	idempotency ports.IdempotencyStore,
	responseTTL time.Duration,
	logger *slog.Logger,
) CreateDraftCommandHandler {
	return CreateDraftCommandHandler{
		uowFactory:  uowFactory,
		idempotency: idempotency,
		responseTTL: responseTTL,
		logger:      logger.With("component", "create_draft_handler"),
	}
}

// Handle processes the idempotent create command.
func (h *CreateDraftCommandHandler) Handle(ctx context.Context, cmd CreateDraftCommand) (CreateDraftResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreateDraftResult{}, err
	}

	cacheDegraded := false

	stored, err := h.idempotency.Lookup(ctx, cmd.TenantID(), cmd.IdempotencyKey())
	if err != nil {
		if errors.Is(err, errs.ErrIdempotencyInFlight) {
			return CreateDraftResult{}, err
		}
		h.logger.ErrorContext(ctx, "idempotency store unavailable, proceeding without protection",
			"tenant", cmd.TenantID(), "error", err)
		cacheDegraded = true
	}
	if stored != nil {
		return replayResult(stored)
	}

	claimed := false
	if !cacheDegraded {
		claimed, err = h.idempotency.Claim(ctx, cmd.TenantID(), cmd.IdempotencyKey(), claimTTL)
		if err != nil {
			h.logger.ErrorContext(ctx, "idempotency store unavailable, proceeding without protection",
				"tenant", cmd.TenantID(), "error", err)
			cacheDegraded = true
		} else if !claimed {
			return h.resolveLostClaim(ctx, cmd)
		}
	}

	result, err := h.createDraft(ctx, cmd)
	if err != nil {
		if claimed {
			if releaseErr := h.idempotency.Release(ctx, cmd.TenantID(), cmd.IdempotencyKey()); releaseErr != nil {
				h.logger.ErrorContext(ctx, "failed to release idempotency claim",
					"tenant", cmd.TenantID(), "error", releaseErr)
			}
		}
		return CreateDraftResult{}, err
	}

	if !cacheDegraded {
		h.storeResult(ctx, cmd, result)
	}

	return result, nil
}

// resolveLostClaim handles the contender side of a claim race: the winner's
// finished record is replayed, an unfinished claim surfaces as a conflict.
func (h *CreateDraftCommandHandler) resolveLostClaim(ctx context.Context, cmd CreateDraftCommand) (CreateDraftResult, error) {
	stored, err := h.idempotency.Lookup(ctx, cmd.TenantID(), cmd.IdempotencyKey())
	if err != nil {
		if errors.Is(err, errs.ErrIdempotencyInFlight) {
			return CreateDraftResult{}, err
		}
		return CreateDraftResult{}, err
	}
	if stored != nil {
		return replayResult(stored)
	}

	// The claim expired between Claim and Lookup. Treat it as still
	// in-flight; the client retry will land on a settled state.
	return CreateDraftResult{}, errs.NewIdempotencyInFlightError(cmd.IdempotencyKey())
}

// createDraft executes the actual creation: the order row and its
// orders.created outbox row commit in one unit of work.
func (h *CreateDraftCommandHandler) createDraft(ctx context.Context, cmd CreateDraftCommand) (CreateDraftResult, error) {
	now := time.Now().UTC()

	newOrder, err := order.NewOrder(kernel.NewUUID(), cmd.TenantID(), now)
	if err != nil {
		return CreateDraftResult{}, err
	}

	message, err := outbox.NewMessage(outbox.EventTypeCreated, newOrder, now)
	if err != nil {
		return CreateDraftResult{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return CreateDraftResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return CreateDraftResult{}, err
	}

	if err = uow.OutboxRepository().Add(ctx, message); err != nil {
		return CreateDraftResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CreateDraftResult{}, err
	}

	return CreateDraftResult{
		Response:   NewOrderResponse(newOrder),
		StatusCode: http.StatusCreated,
	}, nil
}

// storeResult caches the final response. Runs after the primary commit;
// failures are logged, never propagated — the order is already durable.
func (h *CreateDraftCommandHandler) storeResult(ctx context.Context, cmd CreateDraftCommand, result CreateDraftResult) {
	raw, err := json.Marshal(result.Response)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal idempotency record",
			"tenant", cmd.TenantID(), "error", err)
		return
	}

	err = h.idempotency.Store(ctx, cmd.TenantID(), cmd.IdempotencyKey(), raw, result.StatusCode, h.responseTTL)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to store idempotency record",
			"tenant", cmd.TenantID(), "error", err)
	}
}

// replayResult returns the originally cached creation response verbatim.
func replayResult(stored *ports.StoredResponse) (CreateDraftResult, error) {
	var response OrderResponse
	if err := json.Unmarshal(stored.Response, &response); err != nil {
		return CreateDraftResult{}, err
	}

	return CreateDraftResult{
		Response:   response,
		StatusCode: stored.StatusCode,
		Replayed:   true,
	}, nil
}
