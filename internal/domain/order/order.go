package order

import (
	"time"

	"github.com/charro/storefront/internal/domain/cart"
	"github.com/charro/storefront/internal/domain/catalog"
	"github.com/charro/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TotalTolerance is the largest accepted gap between a client total and the recomputed one
var TotalTolerance = decimal.NewFromFloat(0.01)

// ErrAlreadyPaid is returned when a payment is recorded for a paid order
var ErrAlreadyPaid = shared.NewDomainError("ALREADY_PAID", "Order is already paid")

// Item is a snapshot of one cart line at checkout time
type Item struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Slug      string
	Title     string
	Image     string
	Gender    catalog.Gender
	Size      catalog.Size
	Quantity  int
	Price     decimal.Decimal
}

// Amount returns price times quantity
func (i Item) Amount() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is an immutable checkout record. Only the paid flag changes after creation.
type Order struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID
	Items           []Item
	ShippingAddress cart.ShippingAddress
	NumberOfItems   int
	SubTotal        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	IsPaid          bool
	PaidAt          *time.Time
	TransactionID   string
}

// NewOrder builds an unpaid order from cart lines priced against the catalog.
// The summary is recomputed here and never taken from the caller.
func NewOrder(userID uuid.UUID, lines []cart.LineItem, address cart.ShippingAddress, taxRate decimal.Decimal) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("EMPTY_CART", "Order must contain at least one item")
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		ShippingAddress:   address,
		Items:             make([]Item, 0, len(lines)),
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		if l.Price.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
		}
		o.Items = append(o.Items, Item{
			ID:        uuid.New(),
			OrderID:   o.ID,
			ProductID: l.ProductID,
			Slug:      l.Slug,
			Title:     l.Title,
			Image:     l.Image,
			Gender:    l.Gender,
			Size:      l.Size,
			Quantity:  l.Quantity,
			Price:     l.Price,
		})
	}

	summary := cart.ComputeSummary(lines, taxRate)
	o.NumberOfItems = summary.NumberOfItems
	o.SubTotal = summary.SubTotal
	o.Tax = summary.Tax
	o.Total = summary.Total

	return o, nil
}

// CheckTotal rejects a client-declared total that disagrees with the order's own
func (o *Order) CheckTotal(clientTotal decimal.Decimal) error {
	if o.Total.Sub(clientTotal).Abs().GreaterThan(TotalTolerance) {
		return shared.NewDomainError("TOTAL_MISMATCH", "Order total does not match the catalog prices")
	}
	return nil
}

// MarkPaid records a payment. Paying an order twice is an error.
func (o *Order) MarkPaid(transactionID string) error {
	if o.IsPaid {
		return ErrAlreadyPaid
	}
	if transactionID == "" {
		return shared.NewDomainError("INVALID_TRANSACTION", "Transaction ID cannot be empty")
	}
	now := time.Now()
	o.IsPaid = true
	o.PaidAt = &now
	o.TransactionID = transactionID
	o.IncrementVersion()
	return nil
}

// IsOwnedBy reports whether userID placed the order
func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.UserID == userID
}
