package order

import (
	"time"

	"github.com/charro/storefront/internal/domain/cart"
	"github.com/charro/storefront/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the checkout payload sent by the storefront.
// Prices and totals are advisory; the server recomputes them.
type CreateOrderRequest struct {
	OrderItems      []cart.LineItem      `json:"order_items"`
	ShippingAddress cart.ShippingAddress `json:"shipping_address"`
	NumberOfItems   int                  `json:"number_of_items"`
	SubTotal        decimal.Decimal      `json:"sub_total"`
	Tax             decimal.Decimal      `json:"tax"`
	Total           decimal.Decimal      `json:"total"`
	IsPaid          bool                 `json:"is_paid"`
}

// ListOrdersQuery selects an order listing
type ListOrdersQuery struct {
	IsPaid   *bool  `form:"is_paid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MarkPaidRequest records an offline payment
type MarkPaidRequest struct {
	TransactionID string `json:"transaction_id" binding:"required,max=100"`
}

// OrderItemResponse is one ordered line
type OrderItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Slug      string          `json:"slug"`
	Title     string          `json:"title"`
	Image     string          `json:"image"`
	Gender    string          `json:"gender"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID            `json:"id"`
	UserID          uuid.UUID            `json:"user_id"`
	OrderItems      []OrderItemResponse  `json:"order_items"`
	ShippingAddress cart.ShippingAddress `json:"shipping_address"`
	NumberOfItems   int                  `json:"number_of_items"`
	SubTotal        decimal.Decimal      `json:"sub_total"`
	Tax             decimal.Decimal      `json:"tax"`
	Total           decimal.Decimal      `json:"total"`
	IsPaid          bool                 `json:"is_paid"`
	PaidAt          *time.Time           `json:"paid_at,omitempty"`
	TransactionID   string               `json:"transaction_id,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

// ToOrderResponse converts a domain Order
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: it.ProductID,
			Slug:      it.Slug,
			Title:     it.Title,
			Image:     it.Image,
			Gender:    string(it.Gender),
			Size:      it.Size.String(),
			Quantity:  it.Quantity,
			Price:     it.Price,
		}
	}
	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		OrderItems:      items,
		ShippingAddress: o.ShippingAddress,
		NumberOfItems:   o.NumberOfItems,
		SubTotal:        o.SubTotal,
		Tax:             o.Tax,
		Total:           o.Total,
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		TransactionID:   o.TransactionID,
		CreatedAt:       o.CreatedAt,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}
