package order

import (
	"context"
	"errors"

	"github.com/charro/storefront/internal/domain/cart"
	"github.com/charro/storefront/internal/domain/catalog"
	"github.com/charro/storefront/internal/domain/order"
	"github.com/charro/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService places and administers orders
type OrderService struct {
	orderRepo   order.OrderRepository
	productRepo catalog.ProductRepository
	taxRate     decimal.Decimal
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo order.OrderRepository, productRepo catalog.ProductRepository, taxRate decimal.Decimal, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		taxRate:     taxRate,
		logger:      logger,
	}
}

// Create prices the cart against the catalog and stores it as an unpaid order
func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	if len(req.OrderItems) == 0 {
		return nil, shared.NewDomainError("EMPTY_CART", "Order must contain at least one item")
	}

	ids := make([]uuid.UUID, 0, len(req.OrderItems))
	seen := make(map[uuid.UUID]bool, len(req.OrderItems))
	for _, it := range req.OrderItems {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]cart.LineItem, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		if it.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		product, ok := byID[it.ProductID]
		if !ok {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product "+it.ProductID.String()+" does not exist")
		}
		if !product.HasSize(it.Size) {
			return nil, shared.NewDomainError("INVALID_SIZE", "Size "+it.Size.String()+" is not offered for "+product.Title)
		}
		lines = cart.AddLine(lines, cart.LineItem{
			ProductID: product.ID,
			Slug:      product.Slug,
			Title:     product.Title,
			Image:     product.FirstImage(),
			Gender:    product.Gender,
			Size:      it.Size,
			Price:     product.Price,
			Quantity:  it.Quantity,
		})
	}

	o, err := order.NewOrder(userID, lines, req.ShippingAddress, s.taxRate)
	if err != nil {
		return nil, err
	}
	if err := o.CheckTotal(req.Total); err != nil {
		s.logger.Warn("Order total mismatch",
			zap.String("user_id", userID.String()),
			zap.String("client_total", req.Total.String()),
			zap.String("server_total", o.Total.String()))
		return nil, err
	}

	if err := s.orderRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	s.logger.Info("Order created",
		zap.String("order_id", o.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total", o.Total.String()))

	resp := ToOrderResponse(o)
	return &resp, nil
}

// GetByID returns an order to its owner or to a back-office user
func (s *OrderService) GetByID(ctx context.Context, id, requesterID uuid.UUID, isAdmin bool) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
		}
		return nil, err
	}
	if !isAdmin && !o.IsOwnedBy(requesterID) {
		// Other users' orders are reported as missing.
		return nil, shared.NewDomainError("NOT_FOUND", "Order not found")
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// ListByUser returns the requester's own orders
func (s *OrderService) ListByUser(ctx context.Context, userID uuid.UUID, q ListOrdersQuery) ([]OrderResponse, int64, shared.Filter, error) {
	return s.list(ctx, &userID, q)
}

// List returns every order for the back office
func (s *OrderService) List(ctx context.Context, q ListOrdersQuery) ([]OrderResponse, int64, shared.Filter, error) {
	return s.list(ctx, nil, q)
}

// MarkPaid records an offline payment for an order
func (s *OrderService) MarkPaid(ctx context.Context, id uuid.UUID, req MarkPaidRequest) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := o.MarkPaid(req.TransactionID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, o); err != nil {
		if errors.Is(err, shared.ErrConcurrentModification) {
			s.logger.Warn("Concurrent payment rejected", zap.String("order_id", o.ID.String()), zap.String("transaction_id", req.TransactionID))
			return nil, order.ErrAlreadyPaid
		}
		return nil, err
	}
	s.logger.Info("Order marked paid", zap.String("order_id", o.ID.String()), zap.String("transaction_id", req.TransactionID))

	resp := ToOrderResponse(o)
	return &resp, nil
}

func (s *OrderService) list(ctx context.Context, userID *uuid.UUID, q ListOrdersQuery) ([]OrderResponse, int64, shared.Filter, error) {
	filter := order.OrderFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			OrderBy:  q.OrderBy,
			OrderDir: q.OrderDir,
		}.Normalize(),
		UserID: userID,
		IsPaid: q.IsPaid,
	}
	orders, total, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, filter.Filter, err
	}
	return ToOrderResponses(orders), total, filter.Filter, nil
}
