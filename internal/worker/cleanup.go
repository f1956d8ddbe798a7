package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pesokrava/catalog/internal/domain"
	"github.com/pesokrava/catalog/internal/pkg/logger"
)

const (
	// EventProductDeleted is the only event type the cleanup worker acts on
	EventProductDeleted = "product.deleted"

	// Retry configuration
	maxRetries     = 3
	initialBackoff = 100 * time.Millisecond
)

// ProductEvent mirrors the catalog lifecycle event payload
type ProductEvent struct {
	EventType string    `json:"event_type"`
	ProductID int64     `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CleanupWorker re-runs view log clearing for deleted products. The API
// clears the log synchronously before deleting the row; this worker is the
// retry path for the cases where that best-effort clear failed, or where
// the row deletion failed after a successful clear and a later retry of
// the delete raced new view entries in. Clearing is idempotent, so
// redelivered events are harmless.
type CleanupWorker struct {
	viewLog domain.ViewLogRepository
	logger  *logger.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCleanupWorker creates a new cleanup worker
func NewCleanupWorker(viewLog domain.ViewLogRepository, log *logger.Logger) *CleanupWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &CleanupWorker{
		viewLog: viewLog,
		logger:  log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// HandleEvent processes one catalog event. Events other than
// product.deleted are acknowledged without work. A returned error means
// the caller should NAK the message for redelivery.
func (w *CleanupWorker) HandleEvent(data []byte) error {
	var event ProductEvent
	if err := json.Unmarshal(data, &event); err != nil {
		w.logger.Error("Failed to unmarshal catalog event", err)
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.EventType != EventProductDeleted {
		w.logger.WithFields(map[string]any{
			"type":       event.EventType,
			"product_id": event.ProductID,
		}).Debug("Ignoring non-delete event")
		return nil
	}

	w.logger.WithFields(map[string]any{
		"product_id": event.ProductID,
		"timestamp":  event.Timestamp,
	}).Info("Received product deletion event")

	return w.clearWithRetry(event.ProductID)
}

// clearWithRetry clears the product's view log, retrying with exponential
// backoff before giving the message back for NATS-level redelivery.
func (w *CleanupWorker) clearWithRetry(productID int64) error {
	w.wg.Add(1)
	defer w.wg.Done()

	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			w.logger.WithFields(map[string]any{
				"product_id": productID,
				"attempt":    attempt + 1,
				"backoff_ms": backoff.Milliseconds(),
			}).Warn("Retrying view log cleanup")

			select {
			case <-time.After(backoff):
			case <-w.ctx.Done():
				w.logger.Info("Worker context cancelled, aborting retry")
				return w.ctx.Err()
			}

			backoff *= 2
		}

		ctx, cancel := context.WithTimeout(w.ctx, 5*time.Second)
		err := w.viewLog.Clear(ctx, productID)
		cancel()

		if err == nil {
			w.logger.WithFields(map[string]any{
				"product_id": productID,
			}).Info("View log cleared")
			return nil
		}

		lastErr = err
		w.logger.WithFields(map[string]any{
			"product_id": productID,
			"attempt":    attempt + 1,
		}).Error("Failed to clear view log", err)
	}

	return fmt.Errorf("view log cleanup for product %d failed after %d attempts: %w", productID, maxRetries, lastErr)
}

// Shutdown stops retries and waits for in-flight cleanups to finish
func (w *CleanupWorker) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down cleanup worker...")

	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("All in-flight cleanups completed")
		return nil
	case <-ctx.Done():
		w.logger.Warn("Shutdown timeout reached, forcing exit")
		return ctx.Err()
	}
}
