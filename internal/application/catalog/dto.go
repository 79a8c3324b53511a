package catalog

import (
	"time"

	"github.com/charro/storefront/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListProductsQuery selects the public product listing
type ListProductsQuery struct {
	Gender   string `form:"gender"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// AdminListQuery selects the back-office product listing
type AdminListQuery struct {
	Gender   string `form:"gender"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Title       string          `json:"title" binding:"required,min=1,max=200"`
	Slug        string          `json:"slug" binding:"max=200"`
	Description string          `json:"description" binding:"max=5000"`
	Images      []string        `json:"images" binding:"max=10"`
	InStock     int             `json:"in_stock" binding:"min=0"`
	Price       decimal.Decimal `json:"price"`
	Sizes       []string        `json:"sizes" binding:"required,min=1,dive,size"`
	Tags        []string        `json:"tags"`
	Type        string          `json:"type" binding:"required,oneof=shirts pants hoodies hats"`
	Gender      string          `json:"gender" binding:"required,oneof=men women kid unisex"`
}

// UpdateProductRequest represents a request to update a product.
// Nil fields are left unchanged.
type UpdateProductRequest struct {
	Title       *string          `json:"title" binding:"omitempty,min=1,max=200"`
	Slug        *string          `json:"slug" binding:"omitempty,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=5000"`
	Images      []string         `json:"images" binding:"omitempty,max=10"`
	InStock     *int             `json:"in_stock" binding:"omitempty,min=0"`
	Price       *decimal.Decimal `json:"price"`
	Sizes       []string         `json:"sizes" binding:"omitempty,min=1,dive,size"`
	Tags        []string         `json:"tags"`
	Type        *string          `json:"type" binding:"omitempty,oneof=shirts pants hoodies hats"`
	Gender      *string          `json:"gender" binding:"omitempty,oneof=men women kid unisex"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Images      []string        `json:"images"`
	InStock     int             `json:"in_stock"`
	Price       decimal.Decimal `json:"price"`
	Sizes       []string        `json:"sizes"`
	Tags        []string        `json:"tags"`
	Type        string          `json:"type"`
	Gender      string          `json:"gender"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// UploadImageResponse is returned after an image upload
type UploadImageResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ToProductResponse converts a domain Product, expanding bare image names
// against imageBaseURL.
func ToProductResponse(p *catalog.Product, imageBaseURL string) ProductResponse {
	sizes := make([]string, len(p.Sizes))
	for i, s := range p.Sizes {
		sizes[i] = s.String()
	}
	images := make([]string, len(p.Images))
	for i, img := range p.Images {
		images[i] = ImageURL(img, imageBaseURL)
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProductResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		Images:      images,
		InStock:     p.InStock,
		Price:       p.Price,
		Sizes:       sizes,
		Tags:        tags,
		Type:        string(p.Type),
		Gender:      string(p.Gender),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product, imageBaseURL string) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i], imageBaseURL)
	}
	return out
}
