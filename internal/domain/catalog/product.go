package catalog

import (
	"strings"

	"github.com/charro/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultLowStockThreshold is the stock level at or below which a product counts as low inventory
const DefaultLowStockThreshold = 3

// Product represents a sellable garment in the storefront catalog
// It is the aggregate root for product-related operations
type Product struct {
	shared.BaseAggregateRoot
	Slug        string
	Title       string
	Description string
	Images      []string
	InStock     int
	Price       decimal.Decimal
	Sizes       []Size
	Tags        []string
	Type        ProductType
	Gender      Gender
}

// NewProduct creates a new product. An empty slug is derived from the title.
func NewProduct(slug, title string, price decimal.Decimal, productType ProductType, gender Gender) (*Product, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if slug == "" {
		slug = SlugFromTitle(title)
	}
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}
	if !productType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Product type must be one of shirts, pants, hoodies, hats")
	}
	if !gender.IsValid() {
		return nil, shared.NewDomainError("INVALID_GENDER", "Gender must be one of men, women, kid, unisex")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Slug:              slug,
		Title:             title,
		Price:             price,
		Type:              productType,
		Gender:            gender,
		Images:            []string{},
		Sizes:             []Size{},
		Tags:              []string{},
	}, nil
}

// Update replaces the product's descriptive fields
func (p *Product) Update(title, description string, price decimal.Decimal, productType ProductType, gender Gender) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	if err := validatePrice(price); err != nil {
		return err
	}
	if !productType.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Product type must be one of shirts, pants, hoodies, hats")
	}
	if !gender.IsValid() {
		return shared.NewDomainError("INVALID_GENDER", "Gender must be one of men, women, kid, unisex")
	}

	p.Title = title
	p.Description = description
	p.Price = price
	p.Type = productType
	p.Gender = gender
	p.IncrementVersion()
	return nil
}

// SetSlug changes the product slug
func (p *Product) SetSlug(slug string) error {
	if err := validateSlug(slug); err != nil {
		return err
	}
	p.Slug = slug
	p.IncrementVersion()
	return nil
}

// SetSizes replaces the offered sizes, dropping duplicates
func (p *Product) SetSizes(sizes []Size) error {
	seen := make(map[Size]bool, len(sizes))
	result := make([]Size, 0, len(sizes))
	for _, s := range sizes {
		if !s.IsValid() {
			return shared.NewDomainError("INVALID_SIZE", "Unknown size: "+string(s))
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		result = append(result, s)
	}
	p.Sizes = result
	p.IncrementVersion()
	return nil
}

// SetStock sets the number of units in stock
func (p *Product) SetStock(inStock int) error {
	if inStock < 0 {
		return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
	}
	p.InStock = inStock
	p.IncrementVersion()
	return nil
}

// SetImages replaces the product images
func (p *Product) SetImages(images []string) {
	p.Images = append([]string{}, images...)
	p.IncrementVersion()
}

// AddImage appends one image
func (p *Product) AddImage(image string) {
	p.Images = append(p.Images, image)
	p.IncrementVersion()
}

// SetTags replaces the tags, normalised to lower case
func (p *Product) SetTags(tags []string) {
	result := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			result = append(result, t)
		}
	}
	p.Tags = result
	p.IncrementVersion()
}

// HasSize reports whether the product is offered in the given size
func (p *Product) HasSize(size Size) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// IsOutOfStock returns true if no units are left
func (p *Product) IsOutOfStock() bool {
	return p.InStock == 0
}

// IsLowStock returns true if stock is at or below threshold
func (p *Product) IsLowStock(threshold int) bool {
	return p.InStock <= threshold
}

// FirstImage returns the first image or an empty string
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// SlugFromTitle derives a URL slug: lower case, spaces to underscores, quotes removed
func SlugFromTitle(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.ReplaceAll(slug, " ", "_")
	slug = strings.ReplaceAll(slug, "'", "")
	return slug
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return shared.NewDomainError("INVALID_TITLE", "Product title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Product title cannot exceed 200 characters")
	}
	return nil
}

func validateSlug(slug string) error {
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "Product slug cannot be empty")
	}
	if len(slug) > 200 {
		return shared.NewDomainError("INVALID_SLUG", "Product slug cannot exceed 200 characters")
	}
	if strings.ContainsAny(slug, " '/?#") {
		return shared.NewDomainError("INVALID_SLUG", "Product slug cannot contain spaces, quotes or URL delimiters")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return nil
}
