package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/charro/storefront/internal/domain/catalog"
	"github.com/charro/storefront/internal/domain/shared"
	"github.com/charro/storefront/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySlug finds a product by its slug
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("slug = ?", strings.TrimSpace(slug)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple products by their IDs. Unknown IDs are skipped.
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// FindAll lists products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	var rows []models.ProductModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// Search matches the query against titles and tags, case-insensitively
func (r *GormProductRepository) Search(ctx context.Context, query string, limit int) ([]catalog.Product, error) {
	// tags are stored as JSON text, so its punctuation never matches
	term := strings.ToLower(strings.TrimSpace(jsonPunctuation.Replace(query)))
	if term == "" {
		return []catalog.Product{}, nil
	}
	if limit <= 0 || limit > shared.MaxPageSize {
		limit = shared.DefaultPageSize
	}
	pattern := containsPattern(term)

	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(tags) LIKE ? ESCAPE '!'", pattern, pattern).
		Order("title ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// ExistsBySlug checks whether a slug is taken
func (r *GormProductRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(models.ProductModelFromDomain(product)).Error
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter catalog.ProductFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountOutOfStock counts products with no units in stock
func (r *GormProductRepository) CountOutOfStock(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("in_stock = ?", 0).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountLowStock counts products with stock at or below threshold
func (r *GormProductRepository) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("in_stock <= ?", threshold).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	f := filter.Normalize()
	query = query.Offset(f.Offset()).Limit(f.PageSize)

	field := ValidateSortField(f.OrderBy, ProductSortFields, "title")
	return query.Order(orderClause(field, ValidateSortOrder(f.OrderDir)))
}

func (r *GormProductRepository) applyFilterWithoutPagination(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	if filter.Gender != "" {
		query = query.Where("gender = ?", filter.Gender)
	}
	if filter.Search != "" {
		pattern := containsPattern(strings.ToLower(filter.Search))
		query = query.Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(slug) LIKE ? ESCAPE '!'", pattern, pattern)
	}
	return query
}

func toProducts(rows []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
