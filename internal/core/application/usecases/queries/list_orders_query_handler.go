package queries

import (
	"context"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/cursor"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListOrdersQueryHandler retrieves pages of a tenant's orders from the
// database using keyset pagination over (created_at, id).
//
// The keyset beats OFFSET here for two reasons: page cost stays constant
// regardless of depth, and concurrent inserts never shift rows between
// pages. The id tiebreaker makes the sort a total order, so the cursor is
// stable even when many rows share a created_at timestamp.
type ListOrdersQueryHandler struct {
	db *gorm.DB
}

// NewListOrdersQueryHandler creates a handler for order listing.
func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

// Handle executes the query and returns one page of orders, newest first.
// A malformed cursor fails with InvalidCursorError before touching the
// database.
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) (ListOrdersResponse, error) {
	if err := query.Validate(); err != nil {
		return ListOrdersResponse{}, err
	}

	// Fetch one extra row; its presence means another page exists.
	q := h.db.WithContext(ctx).
		Table("orders").
		Where("tenant_id = ?", query.TenantID()).
		Order("created_at DESC, id DESC").
		Limit(query.Limit() + 1)

	if query.Cursor() != "" {
		key, err := cursor.Decode(query.Cursor())
		if err != nil {
			return ListOrdersResponse{}, err
		}
		q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))",
			key.CreatedAt, key.CreatedAt, key.ID.Bytes())
	}

	rows, err := q.Select("id", "tenant_id", "status", "version", "total_cents", "created_at", "updated_at").Rows()
	if err != nil {
		return ListOrdersResponse{}, err
	}
	defer rows.Close()

	items := make([]OrderView, 0, query.Limit()+1)

	for rows.Next() {
		var view OrderView
		var id uuid.UUID

		err = rows.Scan(&id, &view.TenantID, &view.Status, &view.Version, &view.TotalCents, &view.CreatedAt, &view.UpdatedAt)
		if err != nil {
			return ListOrdersResponse{}, err
		}

		view.ID = id.String()
		items = append(items, view)
	}

	if err = rows.Err(); err != nil {
		return ListOrdersResponse{}, err
	}

	response := ListOrdersResponse{Items: items}

	if len(items) > query.Limit() {
		// Drop the extra row; the last *returned* row is the next key.
		response.Items = items[:query.Limit()]
		last := response.Items[len(response.Items)-1]

		nextKey, keyErr := keyFromView(last)
		if keyErr != nil {
			return ListOrdersResponse{}, keyErr
		}
		response.NextCursor = cursor.Encode(nextKey)
	}

	return response, nil
}

func keyFromView(view OrderView) (cursor.Key, error) {
	id, err := kernel.UUIDFromString(view.ID)
	if err != nil {
		return cursor.Key{}, err
	}
	return cursor.Key{CreatedAt: view.CreatedAt, ID: id}, nil
}
