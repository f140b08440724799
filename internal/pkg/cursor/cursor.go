// Package cursor implements the opaque pagination token used for keyset
// pagination over orders.
//
// A token encodes the keyset pair (createdAt, id) of the last row of a page.
// Listing orders by (created_at DESC, id DESC) with the id as tiebreaker gives
// a total order, so the pair uniquely identifies a position even when
// timestamps collide. Tokens round-trip exactly; anything malformed fails with
// an InvalidCursorError rather than silently producing a wrong page.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"
)

// Key is the keyset position a cursor encodes.
type Key struct {
	CreatedAt time.Time
	ID        kernel.UUID
}

// wireKey is the serialized form inside the base64 token.
type wireKey struct {
	CreatedAt string `json:"createdAt"`
	ID        string `json:"id"`
}

// Encode serializes a keyset position into an opaque URL-safe token.
func Encode(key Key) string {
	raw, _ := json.Marshal(wireKey{
		CreatedAt: key.CreatedAt.UTC().Format(time.RFC3339Nano),
		ID:        key.ID.String(),
	})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode parses a token produced by Encode back into its keyset position.
//
// Any malformation — bad base64, bad JSON, a missing field, an unparseable
// timestamp, or an invalid UUID — fails with an InvalidCursorError.
func Decode(token string) (Key, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Key{}, errs.NewInvalidCursorErrorWithCause(err)
	}

	var wire wireKey
	if err = json.Unmarshal(raw, &wire); err != nil {
		return Key{}, errs.NewInvalidCursorErrorWithCause(err)
	}
	if wire.CreatedAt == "" || wire.ID == "" {
		return Key{}, errs.NewInvalidCursorError()
	}

	createdAt, err := time.Parse(time.RFC3339Nano, wire.CreatedAt)
	if err != nil {
		return Key{}, errs.NewInvalidCursorErrorWithCause(err)
	}

	id, err := kernel.UUIDFromString(wire.ID)
	if err != nil {
		return Key{}, errs.NewInvalidCursorErrorWithCause(err)
	}

	return Key{CreatedAt: createdAt.UTC(), ID: id}, nil
}
