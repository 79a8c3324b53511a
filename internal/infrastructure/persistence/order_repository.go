package persistence

import (
	"context"
	"errors"

	"github.com/charro/storefront/internal/domain/order"
	"github.com/charro/storefront/internal/domain/shared"
	"github.com/charro/storefront/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create stores the order and its items in one transaction
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
}

// Update persists the payment state of an order. Items are immutable.
// The order must carry exactly one version increment since it was loaded;
// a stale copy fails with shared.ErrConcurrentModification.
func (r *GormOrderRepository) Update(ctx context.Context, o *order.Order) error {
	loadedVersion := o.Version - 1
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", o.ID, loadedVersion).
			Updates(map[string]any{
				"is_paid":        o.IsPaid,
				"paid_at":        o.PaidAt,
				"transaction_id": o.TransactionID,
				"version":        o.Version,
				"updated_at":     o.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var count int64
		if err := tx.Model(&models.OrderModel{}).Where("id = ?", o.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrentModification
	})
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists orders matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter order.OrderFilter) ([]order.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.IsPaid != nil {
		query = query.Where("is_paid = ?", *filter.IsPaid)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	f := filter.Normalize()
	field := ValidateSortField(f.OrderBy, OrderSortFields, "created_at")

	var rows []models.OrderModel
	if err := query.
		Preload("Items").
		Order(orderClause(field, ValidateSortOrder(f.OrderDir))).
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]order.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, total, nil
}

// Count counts all orders
func (r *GormOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountPaid counts paid orders
func (r *GormOrderRepository) CountPaid(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("is_paid = ?", true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)
