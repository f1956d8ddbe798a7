package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/pesokrava/catalog/internal/domain"
	"github.com/pesokrava/catalog/internal/pkg/validator"
)

// ProductRepository implements domain.ProductRepository for PostgreSQL
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create persists a new product and assigns its ID
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, description, price, status, stock_quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowxContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		product.Status,
		product.StockQuantity,
	).Scan(&product.ID)

	if err != nil {
		return err
	}

	return nil
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, status, stock_quantity
		FROM products
		WHERE id = $1
	`

	var product domain.Product
	err := r.db.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &product, nil
}

// List retrieves all products in insertion order
func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, name, description, price, status, stock_quantity
		FROM products
		ORDER BY id
	`

	var products []*domain.Product
	err := r.db.SelectContext(ctx, &products, query)
	if err != nil {
		return nil, err
	}

	return products, nil
}

// Update merges the patch into the stored row inside a transaction. The
// row is locked for the duration of the merge so concurrent updates and
// deletes of the same id serialize instead of losing writes.
func (r *ProductRepository) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := lockProduct(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	// The caller validates its merge against a snapshot read outside this
	// transaction. The row may have changed before the lock was taken, so
	// the merge against the locked row must pass the rule set too.
	merged := patch.Apply(*current)
	if err := validator.ValidateProduct(merged); err != nil {
		return nil, err
	}

	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, status = $4, stock_quantity = $5
		WHERE id = $6
	`

	if _, err := tx.ExecContext(
		ctx,
		query,
		merged.Name,
		merged.Description,
		merged.Price,
		merged.Status,
		merged.StockQuantity,
		id,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &merged, nil
}

// Delete removes a product and returns it as it existed before removal.
// The fetch and the delete run in one transaction with the row locked, so
// a concurrent update cannot interleave between them.
func (r *ProductRepository) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	product, err := lockProduct(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return product, nil
}

// lockProduct fetches a row with FOR UPDATE inside the given transaction
func lockProduct(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, status, stock_quantity
		FROM products
		WHERE id = $1
		FOR UPDATE
	`

	var product domain.Product
	err := tx.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &product, nil
}
