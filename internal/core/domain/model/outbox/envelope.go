package outbox

import (
	"encoding/json"
	"time"
)

// EnvelopeSource identifies this service as the event origin.
const EnvelopeSource = "orders-service"

// EnvelopeSchemaVersion is the current envelope schema revision.
const EnvelopeSchemaVersion = "1"

// Envelope is the wire format delivered to the event sink.
//
// ID equals the outbox message ID, so a redelivery after a crash carries the
// same ID as the original attempt. Consumers deduplicate on it; delivery is
// at-least-once.
type Envelope struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	TenantID      string          `json:"tenantId"`
	Time          string          `json:"time"`
	SchemaVersion string          `json:"schemaVersion"`
	Data          json.RawMessage `json:"data"`
}

// NewEnvelope wraps an outbox message for delivery.
func NewEnvelope(m *Message, now time.Time) (Envelope, error) {
	if err := m.Validate(); err != nil {
		return Envelope{}, err
	}

	return Envelope{
		ID:            m.ID().String(),
		Type:          string(m.EventType()),
		Source:        EnvelopeSource,
		TenantID:      m.TenantID(),
		Time:          now.UTC().Format(time.RFC3339Nano),
		SchemaVersion: EnvelopeSchemaVersion,
		Data:          json.RawMessage(m.Payload()),
	}, nil
}
