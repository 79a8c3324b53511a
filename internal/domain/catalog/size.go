package catalog

import (
	"strings"

	"github.com/charro/storefront/internal/domain/shared"
)

// Size is a garment size offered by a product
type Size string

const (
	SizeXS   Size = "XS"
	SizeS    Size = "S"
	SizeM    Size = "M"
	SizeL    Size = "L"
	SizeXL   Size = "XL"
	SizeXXL  Size = "XXL"
	SizeXXXL Size = "XXXL"
)

// ValidSizes lists the sizes in display order
var ValidSizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeXXXL}

// IsValid reports whether s is one of ValidSizes
func (s Size) IsValid() bool {
	for _, v := range ValidSizes {
		if s == v {
			return true
		}
	}
	return false
}

// String returns the string representation of Size
func (s Size) String() string {
	return string(s)
}

// ParseSize parses a size case-insensitively
func ParseSize(raw string) (Size, error) {
	s := Size(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.NewDomainError("INVALID_SIZE", "Size must be one of XS, S, M, L, XL, XXL, XXXL")
	}
	return s, nil
}

// Gender is the audience a product is made for
type Gender string

const (
	GenderMen    Gender = "men"
	GenderWomen  Gender = "women"
	GenderKid    Gender = "kid"
	GenderUnisex Gender = "unisex"
)

// IsValid checks if the gender is a known value
func (g Gender) IsValid() bool {
	switch g {
	case GenderMen, GenderWomen, GenderKid, GenderUnisex:
		return true
	}
	return false
}

// ProductType is the garment family of a product
type ProductType string

const (
	ProductTypeShirts  ProductType = "shirts"
	ProductTypePants   ProductType = "pants"
	ProductTypeHoodies ProductType = "hoodies"
	ProductTypeHats    ProductType = "hats"
)

// IsValid checks if the product type is a known value
func (t ProductType) IsValid() bool {
	switch t {
	case ProductTypeShirts, ProductTypePants, ProductTypeHoodies, ProductTypeHats:
		return true
	}
	return false
}
