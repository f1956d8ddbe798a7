package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pesokrava/catalog/internal/domain"
)

// ViewLogRepository implements domain.ViewLogRepository on Redis. Each
// product owns one list keyed by its id; every view appends one JSON
// document, so RPUSH/LRANGE preserve write order and DEL clears the whole
// log in a single idempotent call.
type ViewLogRepository struct {
	client    *goredis.Client
	keyPrefix string
}

// viewDocument is the persisted per-view document. The product id is kept
// in the document even though the key encodes it, so entries stay
// self-describing if they are ever moved or inspected out of band.
type viewDocument struct {
	ProductID int64     `json:"product_id"`
	ViewedAt  time.Time `json:"viewed_at"`
}

// NewViewLogRepository creates a new Redis view log repository
func NewViewLogRepository(client *goredis.Client, keyPrefix string) *ViewLogRepository {
	return &ViewLogRepository{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (r *ViewLogRepository) key(productID int64) string {
	return fmt.Sprintf("%s:%d", r.keyPrefix, productID)
}

// Append writes one view entry for the product with the current UTC time
func (r *ViewLogRepository) Append(ctx context.Context, productID int64) error {
	doc := viewDocument{
		ProductID: productID,
		ViewedAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal view document: %w", err)
	}

	if err := r.client.RPush(ctx, r.key(productID), data).Err(); err != nil {
		return fmt.Errorf("failed to append view log entry: %w", err)
	}

	return nil
}

// Query returns every view entry for the product in write order
func (r *ViewLogRepository) Query(ctx context.Context, productID int64) ([]domain.ViewLogEntry, error) {
	values, err := r.client.LRange(ctx, r.key(productID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query view log: %w", err)
	}

	entries := make([]domain.ViewLogEntry, 0, len(values))
	for _, value := range values {
		var doc viewDocument
		if err := json.Unmarshal([]byte(value), &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal view document: %w", err)
		}
		entries = append(entries, domain.ViewLogEntry{ViewedAt: doc.ViewedAt})
	}

	return entries, nil
}

// Clear deletes every view entry for the product. Clearing a product with
// no entries is a no-op.
func (r *ViewLogRepository) Clear(ctx context.Context, productID int64) error {
	if err := r.client.Del(ctx, r.key(productID)).Err(); err != nil {
		return fmt.Errorf("failed to clear view log: %w", err)
	}

	return nil
}
