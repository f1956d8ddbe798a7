package domain

import (
	"context"
)

// Status is the canonical product availability status. The constants double
// as the wire values, so there is no second enum to keep in sync.
type Status string

const (
	StatusInStock       Status = "in_stock"
	StatusInReplacement Status = "in_replacement"
	StatusOutOfStock    Status = "out_of_stock"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusInStock, StatusInReplacement, StatusOutOfStock:
		return true
	}
	return false
}

// Product represents a product in the catalog.
//
// Status and StockQuantity are coupled: out_of_stock requires a stock
// quantity of exactly 0, the other statuses require it to be positive.
// The cross-field rule is enforced by a struct-level validation registered
// in internal/pkg/validator.
type Product struct {
	ID            int64   `json:"id" db:"id"`
	Name          string  `json:"name" db:"name" validate:"required,max=128"`
	Description   string  `json:"description" db:"description" validate:"required,max=255"`
	Price         float64 `json:"price" db:"price" validate:"gt=0"`
	Status        Status  `json:"status" db:"status" validate:"required,oneof=in_stock in_replacement out_of_stock"`
	StockQuantity int     `json:"stock_quantity" db:"stock_quantity" validate:"gte=0"`
}

// ProductPatch is a partial update to a product. Nil fields keep their
// current values.
type ProductPatch struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	Status        *Status  `json:"status,omitempty"`
	StockQuantity *int     `json:"stock_quantity,omitempty"`
}

// Apply overlays the set fields of the patch onto a copy of p and returns
// the merged product.
func (patch ProductPatch) Apply(p Product) Product {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.StockQuantity != nil {
		p.StockQuantity = *patch.StockQuantity
	}
	return p
}

// Empty reports whether the patch sets no fields at all.
func (patch ProductPatch) Empty() bool {
	return patch.Name == nil &&
		patch.Description == nil &&
		patch.Price == nil &&
		patch.Status == nil &&
		patch.StockQuantity == nil
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	// Create persists a new product and assigns its ID
	Create(ctx context.Context, product *Product) error

	// GetByID retrieves a product by ID
	GetByID(ctx context.Context, id int64) (*Product, error)

	// List retrieves all products in insertion order
	List(ctx context.Context) ([]*Product, error)

	// Update atomically merges the patch into the stored row and returns
	// the updated product
	Update(ctx context.Context, id int64, patch ProductPatch) (*Product, error)

	// Delete removes a product and returns it as it existed before removal
	Delete(ctx context.Context, id int64) (*Product, error)
}
