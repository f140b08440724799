// Package http exposes the order lifecycle over REST.
//
// Every order route requires the X-Tenant-Id header; the tenant is never
// taken from the body or the URL. Errors use a single envelope shape
// {"error": {code, message, timestamp, path, details}} with stable symbolic
// codes that clients branch on.
package http

import (
	"net/http"
	"strconv"
	"strings"

	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	headerTenantID       = "X-Tenant-Id"
	headerIdempotencyKey = "Idempotency-Key"
	headerIfMatch        = "If-Match"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	createDraftHandler  commands.CreateDraftCommandHandler
	confirmOrderHandler commands.ConfirmOrderCommandHandler
	closeOrderHandler   commands.CloseOrderCommandHandler
	listOrdersHandler   queries.ListOrdersQueryHandler
	registry            *prometheus.Registry
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createDraftHandler commands.CreateDraftCommandHandler,
	confirmOrderHandler commands.ConfirmOrderCommandHandler,
	closeOrderHandler commands.CloseOrderCommandHandler,
	listOrdersHandler queries.ListOrdersQueryHandler,
	registry *prometheus.Registry,
) *Server {
	return &Server{
		createDraftHandler:  createDraftHandler,
		confirmOrderHandler: confirmOrderHandler,
		closeOrderHandler:   closeOrderHandler,
		listOrdersHandler:   listOrdersHandler,
		registry:            registry,
	}
}

// RegisterRoutes mounts all routes on e.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	orders := e.Group("/api/v1/orders", requireTenant)
	orders.POST("", s.CreateOrder)
	orders.PATCH("/:id/confirm", s.ConfirmOrder)
	orders.POST("/:id/close", s.CloseOrder)
	orders.GET("", s.ListOrders)

	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(
		promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}

// requireTenant rejects requests without a tenant identity before any
// handler runs.
func requireTenant(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if ctx.Request().Header.Get(headerTenantID) == "" {
			return respondError(ctx, http.StatusForbidden,
				"TENANT_REQUIRED", "X-Tenant-Id header is required", nil)
		}
		return next(ctx)
	}
}

// CreateOrder handles POST /api/v1/orders - idempotent draft creation.
func (s *Server) CreateOrder(ctx echo.Context) error {
	tenantID := ctx.Request().Header.Get(headerTenantID)

	idempotencyKey := ctx.Request().Header.Get(headerIdempotencyKey)
	if idempotencyKey == "" {
		return respondError(ctx, http.StatusBadRequest,
			"HTTP_400", "Idempotency-Key header is required", nil)
	}

	cmd, err := commands.NewCreateDraftCommand(tenantID, idempotencyKey)
	if err != nil {
		return respondDomainError(ctx, err)
	}

	result, err := s.createDraftHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondDomainError(ctx, err)
	}

	// Replays return the originally cached creation response, status
	// included.
	return ctx.JSON(result.StatusCode, result.Response)
}

// ConfirmOrder handles PATCH /api/v1/orders/:id/confirm with optimistic locking.
func (s *Server) ConfirmOrder(ctx echo.Context) error {
	tenantID := ctx.Request().Header.Get(headerTenantID)

	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, http.StatusBadRequest,
			"HTTP_400", "Invalid order id", nil)
	}

	version, err := parseIfMatch(ctx.Request().Header.Get(headerIfMatch))
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "HTTP_400", err.Error(), nil)
	}

	var body confirmOrderRequest
	if err = ctx.Bind(&body); err != nil {
		return respondError(ctx, http.StatusBadRequest,
			"HTTP_400", "Invalid request body", nil)
	}

	cmd, err := commands.NewConfirmOrderCommand(orderID, tenantID, version, body.TotalCents)
	if err != nil {
		return respondDomainError(ctx, err)
	}

	response, err := s.confirmOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondDomainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

// CloseOrder handles POST /api/v1/orders/:id/close.
func (s *Server) CloseOrder(ctx echo.Context) error {
	tenantID := ctx.Request().Header.Get(headerTenantID)

	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, http.StatusBadRequest,
			"HTTP_400", "Invalid order id", nil)
	}

	cmd, err := commands.NewCloseOrderCommand(orderID, tenantID)
	if err != nil {
		return respondDomainError(ctx, err)
	}

	response, err := s.closeOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondDomainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

// ListOrders handles GET /api/v1/orders with keyset pagination.
func (s *Server) ListOrders(ctx echo.Context) error {
	tenantID := ctx.Request().Header.Get(headerTenantID)

	limit := 0
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest,
				"HTTP_400", "Invalid limit parameter", nil)
		}
		limit = parsed
	}

	query, err := queries.NewListOrdersQuery(tenantID, limit, ctx.QueryParam("cursor"))
	if err != nil {
		return respondDomainError(ctx, err)
	}

	response, err := s.listOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondDomainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, response)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type confirmOrderRequest struct {
	TotalCents int64 `json:"totalCents"`
}

// parseIfMatch extracts the version token, tolerating the quoted form
// `"3"` that strict ETag clients send.
func parseIfMatch(raw string) (int, error) {
	if raw == "" {
		return 0, errIfMatchRequired
	}

	version, err := strconv.Atoi(strings.ReplaceAll(raw, `"`, ""))
	if err != nil {
		return 0, errIfMatchFormat
	}

	return version, nil
}
