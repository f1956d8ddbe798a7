package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pesokrava/catalog/internal/domain"
	"github.com/pesokrava/catalog/internal/pkg/logger"
	"github.com/pesokrava/catalog/internal/pkg/validator"
)

// EventPublisher defines the interface for publishing lifecycle events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// ProductEvent represents a product lifecycle event
type ProductEvent struct {
	EventType string          `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	ProductID int64           `json:"product_id"`
	Product   *domain.Product `json:"product,omitempty"`
}

// Service orchestrates the product store and the view log store. The two
// stores fail independently: existence is always confirmed against the
// product store before any view log side effect, and a failed view log
// write never fails the product operation that triggered it.
type Service struct {
	products  domain.ProductRepository
	viewLog   domain.ViewLogRepository
	publisher EventPublisher
	logger    *logger.Logger
}

// NewService creates a new catalog service
func NewService(
	products domain.ProductRepository,
	viewLog domain.ViewLogRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		products:  products,
		viewLog:   viewLog,
		publisher: publisher,
		logger:    log,
	}
}

// Create validates a new product and persists it. The view log is not
// touched: creating a product is not a view.
func (s *Service) Create(ctx context.Context, product *domain.Product) error {
	if err := validator.ValidateProduct(*product); err != nil {
		s.logger.Debugf("Product validation failed: %v", err)
		return err
	}

	if err := s.products.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", err)
		return err
	}

	s.publishEvent("product.created", product.ID, product)

	s.logger.WithFields(map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("Product created successfully")

	return nil
}

// List returns all products in insertion order. Listing counts as viewing
// every listed product, so one view log entry is appended per record; the
// returned list is never altered by logging outcome.
func (s *Service) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list products", err)
		return nil, err
	}

	for _, product := range products {
		s.logView(ctx, product.ID)
	}

	return products, nil
}

// GetByID returns a product and records the view. The view log append
// happens only after existence is confirmed.
func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if err == domain.ErrNotFound {
			s.logger.Debugf("Product not found: %d", id)
		} else {
			s.logger.Error("Failed to get product", err)
		}
		return nil, err
	}

	s.logView(ctx, id)

	return product, nil
}

// Update merges a partial payload into an existing product. A missing id
// takes precedence over payload validation, and the merged record must
// satisfy the full rule set before the store is touched.
func (s *Service) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	existing, err := s.products.GetByID(ctx, id)
	if err != nil {
		if err == domain.ErrNotFound {
			s.logger.Debugf("Product not found: %d", id)
		} else {
			s.logger.Error("Failed to get product for update", err)
		}
		return nil, err
	}

	// An empty payload changes nothing; skip the store write and the
	// updated event entirely.
	if patch.Empty() {
		return existing, nil
	}

	merged := patch.Apply(*existing)
	if err := validator.ValidateProduct(merged); err != nil {
		s.logger.Debugf("Merged product validation failed: %v", err)
		return nil, err
	}

	updated, err := s.products.Update(ctx, id, patch)
	if err != nil {
		s.logger.Error("Failed to update product", err)
		return nil, err
	}

	s.publishEvent("product.updated", id, updated)

	s.logger.WithFields(map[string]interface{}{
		"product_id": id,
		"name":       updated.Name,
	}).Info("Product updated successfully")

	return updated, nil
}

// Delete removes a product and cascades to its view log. The log is
// cleared before the row is deleted so logs are never orphaned; the clear
// itself is best-effort and the product.deleted event lets the cleanup
// worker retry it.
func (s *Service) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	if _, err := s.products.GetByID(ctx, id); err != nil {
		if err == domain.ErrNotFound {
			s.logger.Debugf("Product not found: %d", id)
		} else {
			s.logger.Error("Failed to get product for deletion", err)
		}
		return nil, err
	}

	if err := s.viewLog.Clear(ctx, id); err != nil {
		s.logger.Warnf("Failed to clear view log for product %d: %v", id, err)
	}

	deleted, err := s.products.Delete(ctx, id)
	if err != nil {
		s.logger.Error("Failed to delete product", err)
		return nil, err
	}

	s.publishEvent("product.deleted", id, deleted)

	s.logger.WithFields(map[string]interface{}{
		"product_id": id,
	}).Info("Product deleted successfully")

	return deleted, nil
}

// ViewReport returns a product together with its recorded views. The
// report itself does not count as a view.
func (s *Service) ViewReport(ctx context.Context, id int64) (*domain.ViewReport, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if err == domain.ErrNotFound {
			s.logger.Debugf("Product not found: %d", id)
		} else {
			s.logger.Error("Failed to get product for view report", err)
		}
		return nil, err
	}

	views, err := s.viewLog.Query(ctx, id)
	if err != nil {
		s.logger.Error("Failed to query view log", err)
		return nil, err
	}

	return &domain.ViewReport{
		Product:       product,
		NumberOfViews: len(views),
		Views:         views,
	}, nil
}

// logView appends one view log entry for a confirmed-to-exist product.
// A failed append is reported, never propagated: the read already
// succeeded and the caller gets its record regardless.
func (s *Service) logView(ctx context.Context, id int64) {
	if err := s.viewLog.Append(ctx, id); err != nil {
		s.logger.Warnf("Failed to log view for product %d: %v", id, err)
		return
	}

	s.publishEvent("product.viewed", id, nil)
}

// publishEvent publishes a product lifecycle event (non-blocking)
func (s *Service) publishEvent(eventType string, id int64, product *domain.Product) {
	if s.publisher == nil {
		return
	}

	event := ProductEvent{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		ProductID: id,
		Product:   product,
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorf(err, "Failed to marshal %s event for product %d", eventType, id)
		return
	}

	// Publish in background to avoid blocking
	go func() {
		if err := s.publisher.Publish(context.Background(), "catalog.events", data); err != nil {
			s.logger.Errorf(err, "Failed to publish %s event for product %d", eventType, id)
		}
	}()
}
