package report

import (
	"context"

	"github.com/charro/storefront/internal/domain/catalog"
	"github.com/charro/storefront/internal/domain/identity"
	"github.com/charro/storefront/internal/domain/order"
	reportdomain "github.com/charro/storefront/internal/domain/report"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultLowStockThreshold is the stock level at or below which a product counts as low
const DefaultLowStockThreshold = 3

// DashboardSummary holds the admin dashboard counters
type DashboardSummary = reportdomain.DashboardSummary

// DashboardService computes the admin dashboard counters
type DashboardService struct {
	orderRepo         order.OrderRepository
	userRepo          identity.UserRepository
	productRepo       catalog.ProductRepository
	lowStockThreshold int
	logger            *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	orderRepo order.OrderRepository,
	userRepo identity.UserRepository,
	productRepo catalog.ProductRepository,
	lowStockThreshold int,
	logger *zap.Logger,
) *DashboardService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		orderRepo:         orderRepo,
		userRepo:          userRepo,
		productRepo:       productRepo,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}
}

// GetSummary runs the six counts concurrently. Any failure fails the whole summary.
func (s *DashboardService) GetSummary(ctx context.Context) (*DashboardSummary, error) {
	var orders, paid, clients, products, noInventory, lowInventory int64
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		orders, err = s.orderRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		paid, err = s.orderRepo.CountPaid(gctx)
		return err
	})
	g.Go(func() (err error) {
		clients, err = s.userRepo.CountByRole(gctx, identity.RoleClient)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.productRepo.Count(gctx, catalog.ProductFilter{})
		return err
	})
	g.Go(func() (err error) {
		noInventory, err = s.productRepo.CountOutOfStock(gctx)
		return err
	})
	g.Go(func() (err error) {
		lowInventory, err = s.productRepo.CountLowStock(gctx, s.lowStockThreshold)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Dashboard summary failed", zap.Error(err))
		return nil, err
	}
	summary := reportdomain.NewDashboardSummary(orders, paid, clients, products, noInventory, lowInventory)
	return &summary, nil
}
