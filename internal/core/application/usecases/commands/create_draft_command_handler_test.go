package commands_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/ports"
	"orders/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateDraftCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewCreateDraftCommand("tenant-a", "key-1")

	store := new(MockIdempotencyStore)
	orderRepo := new(MockOrderRepository)
	outboxRepo := new(MockOutboxRepository)
	uow := new(MockUoW)
	mock.InOrder(
		store.On("Lookup", ctx, "tenant-a", "key-1").Return(nil, nil).Once(),
		store.On("Claim", ctx, "tenant-a", "key-1", mock.AnythingOfType("time.Duration")).Return(true, nil).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("OutboxRepository").Return(outboxRepo).Once(),
		outboxRepo.On("Add", mock.Anything, mock.AnythingOfType("*outbox.Message")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
		store.On("Store", ctx, "tenant-a", "key-1", mock.AnythingOfType("json.RawMessage"), http.StatusCreated, time.Hour).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateDraftCommandHandler(factory, store, time.Hour, discardLogger())
	result, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.Equal(t, http.StatusCreated, result.StatusCode)
	assert.Equal(t, "tenant-a", result.Response.TenantID)
	assert.Equal(t, "draft", result.Response.Status)
	assert.Equal(t, 1, result.Response.Version)
	assert.Nil(t, result.Response.TotalCents)

	store.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
	outboxRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestCreateDraftCommandHandler_Handle_ReplaysStoredResponse(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewCreateDraftCommand("tenant-a", "key-1")

	cached := commands.OrderResponse{
		ID:       "0d9702c8-7f3c-4401-a2b0-8007b4ba2b2f",
		TenantID: "tenant-a",
		Status:   "draft",
		Version:  1,
	}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	store := new(MockIdempotencyStore)
	store.On("Lookup", ctx, "tenant-a", "key-1").
		Return(&ports.StoredResponse{Response: raw, StatusCode: http.StatusCreated}, nil).Once()

	factory := new(MockUoWFactory)

	h := commands.NewCreateDraftCommandHandler(factory, store, time.Hour, discardLogger())
	result, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Equal(t, http.StatusCreated, result.StatusCode)
	assert.Equal(t, cached, result.Response)

	store.AssertExpectations(t)
	factory.AssertNotCalled(t, "Create")
}

func TestCreateDraftCommandHandler_Handle_InFlightKeyIsConflict(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewCreateDraftCommand("tenant-a", "key-1")

	store := new(MockIdempotencyStore)
	store.On("Lookup", ctx, "tenant-a", "key-1").
		Return(nil, errs.NewIdempotencyInFlightError("key-1")).Once()

	factory := new(MockUoWFactory)

	h := commands.NewCreateDraftCommandHandler(factory, store, time.Hour, discardLogger())
	_, err := h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrIdempotencyInFlight)
	factory.AssertNotCalled(t, "Create")
}

func TestCreateDraftCommandHandler_Handle_LostClaimReplaysWinner(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewCreateDraftCommand("tenant-a", "key-1")

	cached := commands.OrderResponse{TenantID: "tenant-a", Status: "draft", Version: 1}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	store := new(MockIdempotencyStore)
	mock.InOrder(
		store.On("Lookup", ctx, "tenant-a", "key-1").Return(nil, nil).Once(),
		store.On("Claim", ctx, "tenant-a", "key-1", mock.AnythingOfType("time.Duration")).Return(false, nil).Once(),
		store.On("Lookup", ctx, "tenant-a", "key-1").
			Return(&ports.StoredResponse{Response: raw, StatusCode: http.StatusCreated}, nil).Once(),
	)

	factory := new(MockUoWFactory)

	h := commands.NewCreateDraftCommandHandler(factory, store, time.Hour, discardLogger())
	result, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Equal(t, cached, result.Response)

	store.AssertExpectations(t)
	factory.AssertNotCalled(t, "Create")
}

func TestCreateDraftCommandHandler_Handle_LostClaimStillRunningIsConflict(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewCreateDraftCommand("tenant-a", "key-1")

	store := new(MockIdempotencyStore)
	mock.InOrder(
		store.On("Lookup", ctx, "tenant-a", "key-1").Return(nil, nil).Once(),
		store.On("Claim", ctx, "tenant-a", "key-1", mock.AnythingOfType("time.Duration")).Return(false, nil).Once(),
		store.On("Lookup", ctx, "tenant-a", "key-1").
			Return(nil, errs.NewIdempotencyInFlightError("key-1")).Once(),
	)

	factory := new(MockUoWFactory)

	h := commands.NewCreateDraftCommandHandler(factory, store, time.Hour, discardLogger())
	_, err := h.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrIdempotencyInFlight)
	store.AssertExpectations(t)
}

func TestCreateDraftCommandHandler_Handle_CacheOutageFailsOpen(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewCreateDraftCommand("tenant-a", "key-1")

	store := new(MockIdempotencyStore)
	store.On("Lookup", ctx, "tenant-a", "key-1").Return(nil, errors.New("connection refused")).Once()

	orderRepo := new(MockOrderRepository)
	outboxRepo := new(MockOutboxRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("OutboxRepository").Return(outboxRepo).Once(),
		outboxRepo.On("Add", mock.Anything, mock.AnythingOfType("*outbox.Message")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateDraftCommandHandler(factory, store, time.Hour, discardLogger())
	result, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, result.StatusCode)

	// No claim was held and the cache is down, so nothing gets stored.
	store.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
}

func TestCreateDraftCommandHandler_Handle_ReleasesClaimOnCommitError(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewCreateDraftCommand("tenant-a", "key-1")

	store := new(MockIdempotencyStore)
	orderRepo := new(MockOrderRepository)
	outboxRepo := new(MockOutboxRepository)
	uow := new(MockUoW)
	mock.InOrder(
		store.On("Lookup", ctx, "tenant-a", "key-1").Return(nil, nil).Once(),
		store.On("Claim", ctx, "tenant-a", "key-1", mock.AnythingOfType("time.Duration")).Return(true, nil).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("OutboxRepository").Return(outboxRepo).Once(),
		outboxRepo.On("Add", mock.Anything, mock.AnythingOfType("*outbox.Message")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(errors.New("commit error")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
		store.On("Release", ctx, "tenant-a", "key-1").Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateDraftCommandHandler(factory, store, time.Hour, discardLogger())
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
}

func TestCreateDraftCommandHandler_Handle_StoreFailureDoesNotFailRequest(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewCreateDraftCommand("tenant-a", "key-1")

	store := new(MockIdempotencyStore)
	orderRepo := new(MockOrderRepository)
	outboxRepo := new(MockOutboxRepository)
	uow := new(MockUoW)
	mock.InOrder(
		store.On("Lookup", ctx, "tenant-a", "key-1").Return(nil, nil).Once(),
		store.On("Claim", ctx, "tenant-a", "key-1", mock.AnythingOfType("time.Duration")).Return(true, nil).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Add", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("OutboxRepository").Return(outboxRepo).Once(),
		outboxRepo.On("Add", mock.Anything, mock.AnythingOfType("*outbox.Message")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
		store.On("Store", ctx, "tenant-a", "key-1", mock.AnythingOfType("json.RawMessage"), http.StatusCreated, time.Hour).
			Return(errors.New("connection refused")).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewCreateDraftCommandHandler(factory, store, time.Hour, discardLogger())
	result, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, result.StatusCode)
}

func TestCreateDraftCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.CreateDraftCommand{} // not constructed properly

	factory := new(MockUoWFactory)
	store := new(MockIdempotencyStore)

	h := commands.NewCreateDraftCommandHandler(factory, store, time.Hour, discardLogger())
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
}
