// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. This package implements the repository pattern for the
// order aggregate, handling the conversion between domain entities and their
// database representation.
package orderrepo

import (
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The composite (tenant_id, created_at, id) index backs both tenant-scoped
// lookups and keyset pagination.
type OrderDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID   string    `gorm:"type:text;not null;index:idx_orders_tenant_created,priority:1"`
	Status     string    `gorm:"type:text;not null"`
	Version    int       `gorm:"not null"`
	TotalCents *int64
	CreatedAt  time.Time `gorm:"type:timestamptz;not null;index:idx_orders_tenant_created,priority:2"`
	UpdatedAt  time.Time `gorm:"type:timestamptz;not null"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	return OrderDTO{
		ID:         aggregate.ID().Bytes(),
		TenantID:   aggregate.TenantID(),
		Status:     aggregate.Status().String(),
		Version:    aggregate.Version(),
		TotalCents: aggregate.TotalCents(),
		CreatedAt:  aggregate.CreatedAt(),
		UpdatedAt:  aggregate.UpdatedAt(),
	}
}

// toDomain converts a database DTO to an order aggregate using RestoreOrder,
// so corrupt rows fail during rehydration instead of leaking into the domain.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(id, dto.TenantID, status, dto.Version, dto.TotalCents,
		dto.CreatedAt, dto.UpdatedAt)
}
