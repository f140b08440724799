package ports

import (
	"context"

	"orders/internal/core/domain/model/outbox"
)

// EventPublisher delivers event envelopes to the external event sink.
//
// The outbox relay is the only caller; request handlers never publish
// directly. Delivery is at-least-once: a failed publish leaves the outbox row
// unpublished and the relay retries it on a later pass, so implementations do
// not need to retry internally.
type EventPublisher interface {
	Publish(ctx context.Context, envelope outbox.Envelope) error
}
