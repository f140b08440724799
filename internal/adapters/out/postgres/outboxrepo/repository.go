package outboxrepo

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/outbox"
	"orders/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOutboxRepository implements OutboxRepository using GORM.
type GormOutboxRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOutboxRepository creates a new GORM outbox repository.
func NewGormOutboxRepository(db *gorm.DB, tracker aggregateTracker) *GormOutboxRepository {
	return &GormOutboxRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add appends a new outbox message. Callers run it on the same transaction as
// the order write it belongs to.
func (r *GormOutboxRepository) Add(ctx context.Context, message *outbox.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	dto := fromDomain(message)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(message.ID(), message)
	return nil
}

// GetBatchForPublish claims up to limit unpublished messages, oldest first.
// FOR UPDATE SKIP LOCKED makes concurrent relay workers claim disjoint
// batches: rows locked by another worker's transaction are skipped instead of
// blocked on.
func (r *GormOutboxRepository) GetBatchForPublish(ctx context.Context, limit int) ([]*outbox.Message, error) {
	var dtos []OutboxDTO
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, event_type, order_id, tenant_id, payload, published_at, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at ASC
		LIMIT ?
		FOR UPDATE SKIP LOCKED
	`, limit).Scan(&dtos).Error
	if err != nil {
		return nil, err
	}

	messages := make([]*outbox.Message, 0, len(dtos))
	for _, dto := range dtos {
		m, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		messages = append(messages, m)
	}

	return messages, nil
}

// MarkPublished persists the message's publish latch. The conditional write
// on published_at IS NULL keeps the latch one-way even if two workers race on
// the same row across crashes.
func (r *GormOutboxRepository) MarkPublished(ctx context.Context, message *outbox.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	if !message.IsPublished() {
		return errs.NewValueIsRequiredError("publishedAt")
	}

	result := r.db.WithContext(ctx).Model(&OutboxDTO{}).
		Where("id = ? AND published_at IS NULL", message.ID().Bytes()).
		Update("published_at", message.PublishedAt())
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return outbox.ErrAlreadyPublished
	}

	return nil
}
