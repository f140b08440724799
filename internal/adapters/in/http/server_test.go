package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIfMatch(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr error
	}{
		{name: "plain version", raw: "3", want: 3},
		{name: "quoted etag form", raw: `"3"`, want: 3},
		{name: "missing header", raw: "", wantErr: errIfMatchRequired},
		{name: "not a number", raw: "abc", wantErr: errIfMatchFormat},
		{name: "trailing garbage", raw: "3x", wantErr: errIfMatchFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIfMatch(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireTenant_MissingHeaderIsForbidden(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	called := false
	handler := requireTenant(func(echo.Context) error {
		called = true
		return nil
	})

	require.NoError(t, handler(ctx))
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body := decodeError(t, rec)
	assert.Equal(t, "TENANT_REQUIRED", body.Error.Code)
	assert.Equal(t, "/api/v1/orders", body.Error.Path)
}

func TestRequireTenant_PassesThroughWithHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set(headerTenantID, "tenant-a")
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	called := false
	handler := requireTenant(func(echo.Context) error {
		called = true
		return ctx.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(ctx))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRespondDomainError_Mapping(t *testing.T) {
	orderID := kernel.NewUUID()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        errs.NewObjectNotFoundError("orderID", orderID),
			wantStatus: http.StatusNotFound,
			wantCode:   "ORDER_NOT_FOUND",
		},
		{
			name:       "version conflict",
			err:        errs.NewVersionConflictError(3, 5),
			wantStatus: http.StatusConflict,
			wantCode:   "VERSION_MISMATCH",
		},
		{
			name:       "invalid transition",
			err:        errs.NewInvalidStateTransitionError("draft", "closed"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_STATUS_TRANSITION",
		},
		{
			name:       "invalid cursor",
			err:        errs.NewInvalidCursorError(),
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_CURSOR",
		},
		{
			name:       "idempotency in flight",
			err:        errs.NewIdempotencyInFlightError("key-1"),
			wantStatus: http.StatusConflict,
			wantCode:   "IDEMPOTENCY_CONFLICT",
		},
		{
			name:       "lock timeout",
			err:        errs.NewLockTimeoutError("orderID", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "LOCK_TIMEOUT",
		},
		{
			name:       "missing value",
			err:        errs.NewValueIsRequiredError("tenantID"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "unknown error stays opaque",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
			rec := httptest.NewRecorder()
			ctx := e.NewContext(req, rec)

			require.NoError(t, respondDomainError(ctx, tt.err))
			assert.Equal(t, tt.wantStatus, rec.Code)

			body := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
			assert.NotEmpty(t, body.Error.Timestamp)
		})
	}
}

func TestRespondDomainError_VersionConflictDetails(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/x/confirm", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, respondDomainError(ctx, errs.NewVersionConflictError(3, 5)))

	body := decodeError(t, rec)
	assert.Equal(t, float64(3), body.Error.Details["expectedVersion"])
	assert.Equal(t, float64(5), body.Error.Details["actualVersion"])
}

func TestRespondDomainError_InternalErrorTextNeverLeaks(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, respondDomainError(ctx, assert.AnError))

	body := decodeError(t, rec)
	assert.Equal(t, "An unexpected error occurred", body.Error.Message)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var body errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
