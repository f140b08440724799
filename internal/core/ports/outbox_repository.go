package ports

import (
	"context"

	"orders/internal/core/domain/model/outbox"
)

// OutboxRepository defines the persistence contract for the outbox journal.
//
// Messages are appended in the same transaction as the order mutation that
// produced them; the relay later claims pending batches and latches
// publishedAt. Rows are never deleted.
type OutboxRepository interface {
	// Add appends a new outbox message. Must run inside the same unit of
	// work as the order write it belongs to.
	Add(ctx context.Context, message *outbox.Message) error

	// GetBatchForPublish claims up to limit unpublished messages, oldest
	// first. When called inside a transaction the claimed rows are locked
	// and skipped by concurrent relay workers, so parallel workers drain
	// disjoint batches.
	GetBatchForPublish(ctx context.Context, limit int) ([]*outbox.Message, error)

	// MarkPublished persists the message's publish latch. The write is
	// conditional on the row still being unpublished; the latch is one-way.
	MarkPublished(ctx context.Context, message *outbox.Message) error
}
