package catalog

import (
	"context"

	"github.com/charro/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	Gender Gender
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySlug finds a product by its slug
	FindBySlug(ctx context.Context, slug string) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindAll lists products, optionally restricted to a gender
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)

	// Search matches the query against titles and tags
	Search(ctx context.Context, query string, limit int) ([]Product, error)

	// ExistsBySlug checks whether a slug is taken
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Count counts products matching the filter
	Count(ctx context.Context, filter ProductFilter) (int64, error)

	// CountOutOfStock counts products with no units in stock
	CountOutOfStock(ctx context.Context) (int64, error)

	// CountLowStock counts products with stock at or below threshold
	CountLowStock(ctx context.Context, threshold int) (int64, error)
}
