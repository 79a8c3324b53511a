package storefront

import (
	"context"

	"github.com/charro/storefront/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// Storage persists session values by key.
// Get reports false for a missing key rather than an error.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// OrderRequest is the cart snapshot sent to the order endpoint
type OrderRequest struct {
	OrderItems      []cart.LineItem      `json:"order_items"`
	ShippingAddress cart.ShippingAddress `json:"shipping_address"`
	NumberOfItems   int                  `json:"number_of_items"`
	SubTotal        decimal.Decimal      `json:"sub_total"`
	Tax             decimal.Decimal      `json:"tax"`
	Total           decimal.Decimal      `json:"total"`
	IsPaid          bool                 `json:"is_paid"`
}

// OrderGateway submits orders to the backend and returns the new order's id
type OrderGateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (string, error)
}

// RemoteError is implemented by gateway errors that carry a server-provided message
type RemoteError interface {
	error
	RemoteMessage() string
}
