// Package outboxrepo provides data transfer objects and mapping functions for
// the outbox journal. Rows are appended inside the order mutation's
// transaction and later latched as published by the relay; they are never
// deleted here.
package outboxrepo

import (
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/outbox"

	"github.com/google/uuid"
)

// OutboxDTO represents the database structure for outbox messages.
// The partial index on pending rows keeps the relay's scan cheap even as the
// journal grows.
type OutboxDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EventType   string     `gorm:"type:text;not null"`
	OrderID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	TenantID    string     `gorm:"type:text;not null"`
	Payload     []byte     `gorm:"type:jsonb;not null"`
	PublishedAt *time.Time `gorm:"type:timestamptz;index:idx_outbox_pending,where:published_at IS NULL"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;not null;index"`
}

// TableName specifies the database table name for outbox messages.
func (OutboxDTO) TableName() string {
	return "outbox"
}

// fromDomain converts an outbox message to its database representation.
func fromDomain(message *outbox.Message) OutboxDTO {
	return OutboxDTO{
		ID:          message.ID().Bytes(),
		EventType:   string(message.EventType()),
		OrderID:     message.OrderID().Bytes(),
		TenantID:    message.TenantID(),
		Payload:     message.Payload(),
		PublishedAt: message.PublishedAt(),
		CreatedAt:   message.CreatedAt(),
	}
}

// toDomain converts a database DTO to an outbox message.
func toDomain(dto OutboxDTO) (*outbox.Message, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}

	return outbox.RestoreMessage(id, outbox.EventType(dto.EventType), orderID, dto.TenantID,
		dto.Payload, dto.PublishedAt, dto.CreatedAt)
}
