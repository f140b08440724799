// Package outbox implements the durable journal of domain events that is
// co-committed with the order mutation producing them.
//
// A Message is an append-only row: written once inside the order's unit of
// work, then mutated exactly once more when the relay latches publishedAt
// after a successful delivery. Rows are never deleted; written-but-unpublished
// rows are the recovery mechanism after a crash.
package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"
)

// EventType is the symbolic name of an order lifecycle event.
type EventType string

const (
	// EventTypeCreated is emitted when a draft order is created.
	EventTypeCreated EventType = "orders.created"

	// EventTypeConfirmed is emitted when an order total is fixed.
	EventTypeConfirmed EventType = "orders.confirmed"

	// EventTypeClosed is emitted when an order reaches its terminal state.
	EventTypeClosed EventType = "orders.closed"
)

// Validate checks that the event type is one of the known order events.
func (t EventType) Validate() error {
	switch t {
	case EventTypeCreated, EventTypeConfirmed, EventTypeClosed:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("eventType",
			fmt.Errorf("%q is not a known event type", string(t)))
	}
}

// ErrMessageIsNotConstructed is returned when a Message was not created
// through NewMessage or RestoreMessage.
var ErrMessageIsNotConstructed = errors.New("Message must be created via NewMessage or RestoreMessage")

// ErrAlreadyPublished is returned when MarkPublished is called on a message
// whose publishedAt latch is already set. Publication is one-way.
var ErrAlreadyPublished = errors.New("outbox message is already published")

// payloadSnapshot is the point-in-time view of an order that an event carries.
// It is denormalized on purpose: later order mutations cannot alter an
// already-queued event.
type payloadSnapshot struct {
	OrderID    string `json:"orderId"`
	TenantID   string `json:"tenantId"`
	Status     string `json:"status"`
	Version    int    `json:"version"`
	TotalCents *int64 `json:"totalCents"`
	OccurredAt string `json:"occurredAt"`
}

// Message is a single outbox row.
//
// orderID and tenantID are denormalized from the source order so the relay
// can filter and route without a join. The payload is a serialized snapshot,
// not a reference.
type Message struct {
	id          kernel.UUID
	eventType   EventType
	orderID     kernel.UUID
	tenantID    string
	payload     []byte
	publishedAt *time.Time
	createdAt   time.Time

	isConstructed bool
}

// NewMessage creates an outbox message capturing the order's state at the
// time of the transition. The caller appends it in the same unit of work as
// the order write.
func NewMessage(eventType EventType, o *order.Order, now time.Time) (*Message, error) {
	if err := eventType.Validate(); err != nil {
		return nil, err
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(payloadSnapshot{
		OrderID:    o.ID().String(),
		TenantID:   o.TenantID(),
		Status:     o.Status().String(),
		Version:    o.Version(),
		TotalCents: o.TotalCents(),
		OccurredAt: now.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}

	return &Message{
		id:            kernel.NewUUID(),
		eventType:     eventType,
		orderID:       o.ID(),
		tenantID:      o.TenantID(),
		payload:       payload,
		createdAt:     now.UTC(),
		isConstructed: true,
	}, nil
}

// RestoreMessage reconstructs an outbox message from persistence.
func RestoreMessage(
	id kernel.UUID,
	eventType EventType,
	orderID kernel.UUID,
	tenantID string,
	payload []byte,
	publishedAt *time.Time,
	createdAt time.Time,
) (*Message, error) {
	if err := errors.Join(
		id.Validate(),
		eventType.Validate(),
		orderID.Validate(),
	); err != nil {
		return nil, err
	}
	if tenantID == "" {
		return nil, errs.NewValueIsRequiredError("tenantID")
	}
	if len(payload) == 0 {
		return nil, errs.NewValueIsRequiredError("payload")
	}

	m := &Message{
		id:            id,
		eventType:     eventType,
		orderID:       orderID,
		tenantID:      tenantID,
		payload:       payload,
		createdAt:     createdAt.UTC(),
		isConstructed: true,
	}

	if publishedAt != nil {
		t := publishedAt.UTC()
		m.publishedAt = &t
	}

	return m, nil
}

// Validate ensures the Message instance was properly constructed.
func (m *Message) Validate() error {
	if m == nil || !m.isConstructed {
		return ErrMessageIsNotConstructed
	}
	return nil
}

// ID returns the message's unique identifier. Consumers use it as their
// deduplication key, so it stays stable across redeliveries.
func (m *Message) ID() kernel.UUID {
	return m.id
}

// EventType returns the symbolic event name.
func (m *Message) EventType() EventType {
	return m.eventType
}

// OrderID returns the identifier of the order that produced the event.
func (m *Message) OrderID() kernel.UUID {
	return m.orderID
}

// TenantID returns the tenant that owns the source order.
func (m *Message) TenantID() string {
	return m.tenantID
}

// Payload returns the serialized order snapshot.
func (m *Message) Payload() []byte {
	return m.payload
}

// PublishedAt returns the delivery timestamp, or nil while the message is
// still pending.
func (m *Message) PublishedAt() *time.Time {
	if m.publishedAt == nil {
		return nil
	}
	t := *m.publishedAt
	return &t
}

// CreatedAt returns the append timestamp, the relay's scan ordering key.
func (m *Message) CreatedAt() time.Time {
	return m.createdAt
}

// IsPublished reports whether the publish latch is set.
func (m *Message) IsPublished() bool {
	return m.publishedAt != nil
}

// MarkPublished sets the publish latch. The latch is one-way: calling it on
// an already published message fails with ErrAlreadyPublished and leaves the
// original timestamp in place.
func (m *Message) MarkPublished(now time.Time) error {
	if m.publishedAt != nil {
		return ErrAlreadyPublished
	}
	t := now.UTC()
	m.publishedAt = &t
	return nil
}
