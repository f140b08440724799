package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"orders/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

var (
	errIfMatchRequired = errors.New("If-Match header is required")
	errIfMatchFormat   = errors.New("Invalid version format")
)

// apiError is the body of every non-2xx response, nested under "error".
type apiError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Timestamp string         `json:"timestamp"`
	Path      string         `json:"path"`
	Details   map[string]any `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

func respondError(ctx echo.Context, status int, code, message string, details map[string]any) error {
	return ctx.JSON(status, errorEnvelope{Error: apiError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Path:      ctx.Request().URL.Path,
		Details:   details,
	}})
}

// respondDomainError translates application errors into the wire contract.
// Unrecognized errors collapse to an opaque 500; their text never reaches
// the client.
func respondDomainError(ctx echo.Context, err error) error {
	var notFound *errs.ObjectNotFoundError
	if errors.As(err, &notFound) {
		return respondError(ctx, http.StatusNotFound,
			"ORDER_NOT_FOUND", "Order not found",
			map[string]any{"orderId": fmt.Sprint(notFound.ID)})
	}

	var conflict *errs.VersionConflictError
	if errors.As(err, &conflict) {
		return respondError(ctx, http.StatusConflict,
			"VERSION_MISMATCH", "Order version does not match",
			map[string]any{
				"expectedVersion": conflict.Expected,
				"actualVersion":   conflict.Actual,
			})
	}

	var transition *errs.InvalidStateTransitionError
	if errors.As(err, &transition) {
		return respondError(ctx, http.StatusBadRequest,
			"INVALID_STATUS_TRANSITION", "Requested status transition is not allowed",
			map[string]any{"currentStatus": transition.From})
	}

	if errors.Is(err, errs.ErrInvalidCursor) {
		return respondError(ctx, http.StatusBadRequest,
			"INVALID_CURSOR", "Invalid cursor provided", nil)
	}

	if errors.Is(err, errs.ErrIdempotencyInFlight) {
		return respondError(ctx, http.StatusConflict,
			"IDEMPOTENCY_CONFLICT", "A request with this idempotency key is still being processed", nil)
	}

	if errors.Is(err, errs.ErrLockTimeout) {
		return respondError(ctx, http.StatusServiceUnavailable,
			"LOCK_TIMEOUT", "Order is locked by a concurrent operation, retry shortly", nil)
	}

	if errors.Is(err, errs.ErrValueIsRequired) || errors.Is(err, errs.ErrValueIsInvalid) {
		return respondError(ctx, http.StatusBadRequest,
			"VALIDATION_ERROR", err.Error(), nil)
	}

	return respondError(ctx, http.StatusInternalServerError,
		"INTERNAL_SERVER_ERROR", "An unexpected error occurred", nil)
}
