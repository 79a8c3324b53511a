package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/charro/storefront/internal/domain/catalog"
	"github.com/charro/storefront/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const searchLimit = 20

// ProductService handles product browsing and back-office product management
type ProductService struct {
	productRepo  catalog.ProductRepository
	images       ImageStorage
	imageBaseURL string
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, images ImageStorage, imageBaseURL string, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		images:       images,
		imageBaseURL: imageBaseURL,
		logger:       logger,
	}
}

// List returns the public listing. An unknown gender, or "all", lists every product.
func (s *ProductService) List(ctx context.Context, q ListProductsQuery) ([]ProductResponse, error) {
	filter := catalog.ProductFilter{Filter: shared.DefaultFilter()}
	filter.OrderBy = "title"
	filter.OrderDir = "asc"
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	if g := catalog.Gender(strings.ToLower(q.Gender)); g.IsValid() {
		filter.Gender = g
	}

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products, s.imageBaseURL), nil
}

// GetBySlug returns one product
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Product not found")
		}
		return nil, err
	}
	resp := ToProductResponse(product, s.imageBaseURL)
	return &resp, nil
}

// Search matches the query against titles and tags
func (s *ProductService) Search(ctx context.Context, query string) ([]ProductResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, shared.NewDomainError("INVALID_QUERY", "Search query cannot be empty")
	}
	products, err := s.productRepo.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products, s.imageBaseURL), nil
}

// AdminList returns a paginated listing with the total count
func (s *ProductService) AdminList(ctx context.Context, q AdminListQuery) ([]ProductResponse, int64, shared.Filter, error) {
	base := shared.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  q.OrderBy,
		OrderDir: q.OrderDir,
		Search:   q.Search,
	}
	if base.OrderBy == "" {
		base.OrderBy = "title"
		if base.OrderDir == "" {
			base.OrderDir = "asc"
		}
	}
	filter := catalog.ProductFilter{Filter: base.Normalize()}
	if g := catalog.Gender(strings.ToLower(q.Gender)); g.IsValid() {
		filter.Gender = g
	}

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, filter.Filter, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, filter.Filter, err
	}
	return ToProductResponses(products, s.imageBaseURL), total, filter.Filter, nil
}

// GetByID returns one product for the back office
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product, s.imageBaseURL)
	return &resp, nil
}

// Create creates a new product
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Slug, req.Title, req.Price, catalog.ProductType(req.Type), catalog.Gender(req.Gender))
	if err != nil {
		return nil, err
	}

	exists, err := s.productRepo.ExistsBySlug(ctx, product.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A product with this slug already exists")
	}

	if err := product.Update(req.Title, req.Description, req.Price, product.Type, product.Gender); err != nil {
		return nil, err
	}
	sizes, err := parseSizes(req.Sizes)
	if err != nil {
		return nil, err
	}
	if err := product.SetSizes(sizes); err != nil {
		return nil, err
	}
	if err := product.SetStock(req.InStock); err != nil {
		return nil, err
	}
	product.SetImages(req.Images)
	product.SetTags(req.Tags)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("slug", product.Slug))

	resp := ToProductResponse(product, s.imageBaseURL)
	return &resp, nil
}

// Update applies the non-nil fields of req to the product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title, description, price := product.Title, product.Description, product.Price
	productType, gender := product.Type, product.Gender
	if req.Title != nil {
		title = *req.Title
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Price != nil {
		price = *req.Price
	}
	if req.Type != nil {
		productType = catalog.ProductType(*req.Type)
	}
	if req.Gender != nil {
		gender = catalog.Gender(*req.Gender)
	}
	if err := product.Update(title, description, price, productType, gender); err != nil {
		return nil, err
	}

	if req.Slug != nil && *req.Slug != product.Slug {
		exists, err := s.productRepo.ExistsBySlug(ctx, *req.Slug)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A product with this slug already exists")
		}
		if err := product.SetSlug(*req.Slug); err != nil {
			return nil, err
		}
	}
	if req.Sizes != nil {
		sizes, err := parseSizes(req.Sizes)
		if err != nil {
			return nil, err
		}
		if err := product.SetSizes(sizes); err != nil {
			return nil, err
		}
	}
	if req.InStock != nil {
		if err := product.SetStock(*req.InStock); err != nil {
			return nil, err
		}
	}
	if req.Images != nil {
		product.SetImages(req.Images)
	}
	if req.Tags != nil {
		product.SetTags(req.Tags)
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product, s.imageBaseURL)
	return &resp, nil
}

// UploadImage stores an image and returns its key and URL
func (s *ProductService) UploadImage(ctx context.Context, filename, contentType string, data []byte) (*UploadImageResponse, error) {
	if len(data) == 0 {
		return nil, shared.NewDomainError("INVALID_FILE", "File is empty")
	}
	if len(data) > MaxImageBytes {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", "Image exceeds the 5MB limit")
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_FILE_TYPE", "Only jpeg, png, webp and gif images are accepted")
	}

	key := "products/" + uuid.New().String() + ext
	url, err := s.images.Upload(ctx, key, data, contentType)
	if err != nil {
		s.logger.Error("Image upload failed", zap.String("filename", filename), zap.Error(err))
		return nil, shared.NewDomainError("UPLOAD_FAILED", "Failed to store image")
	}
	return &UploadImageResponse{Key: key, URL: url}, nil
}

func parseSizes(raw []string) ([]catalog.Size, error) {
	sizes := make([]catalog.Size, 0, len(raw))
	for _, r := range raw {
		size, err := catalog.ParseSize(r)
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}
