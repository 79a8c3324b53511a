package order

import (
	"context"

	"github.com/charro/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderFilter narrows order listings
type OrderFilter struct {
	shared.Filter
	UserID *uuid.UUID
	IsPaid *bool
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Create stores a new order with its items
	Create(ctx context.Context, order *Order) error

	// Update persists payment changes
	Update(ctx context.Context, order *Order) error

	// FindByID finds an order with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll lists orders newest first
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)

	// Count counts all orders
	Count(ctx context.Context) (int64, error)

	// CountPaid counts paid orders
	CountPaid(ctx context.Context) (int64, error)
}
