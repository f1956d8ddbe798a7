package domain

import (
	"context"
	"time"
)

// ViewLogEntry records a single viewing of a product. The owning product id
// is implied by the query key and not echoed per entry.
type ViewLogEntry struct {
	ViewedAt time.Time `json:"viewed_at"`
}

// ViewReport is the aggregate returned by GET /products/{id}/views.
type ViewReport struct {
	Product       *Product       `json:"product"`
	NumberOfViews int            `json:"number_of_views"`
	Views         []ViewLogEntry `json:"views"`
}

// ViewLogRepository defines the interface for the per-product view log.
// Entries are immutable once written; Clear is the only deletion path.
type ViewLogRepository interface {
	// Append writes one entry for the product with the current UTC time
	Append(ctx context.Context, productID int64) error

	// Query returns every entry for the product in write order
	Query(ctx context.Context, productID int64) ([]ViewLogEntry, error)

	// Clear deletes every entry for the product; clearing a product with
	// no entries is a no-op
	Clear(ctx context.Context, productID int64) error
}
