package commands

import (
	"time"

	"orders/internal/core/domain/model/order"
)

// OrderResponse is the serializable view of an order returned by the mutating
// commands. For idempotent creation this exact structure is what gets cached
// and replayed, so its JSON encoding must stay stable.
type OrderResponse struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	Status     string    `json:"status"`
	Version    int       `json:"version"`
	TotalCents *int64    `json:"totalCents,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewOrderResponse builds the response view of an order aggregate.
func NewOrderResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:         o.ID().String(),
		TenantID:   o.TenantID(),
		Status:     o.Status().String(),
		Version:    o.Version(),
		TotalCents: o.TotalCents(),
		CreatedAt:  o.CreatedAt(),
		UpdatedAt:  o.UpdatedAt(),
	}
}
