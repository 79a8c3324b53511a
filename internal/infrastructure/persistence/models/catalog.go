package models

import (
	"github.com/charro/storefront/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
// Array fields are stored as JSON text so the schema stays portable.
type ProductModel struct {
	AggregateModel
	Slug        string              `gorm:"type:varchar(200);not null;uniqueIndex"`
	Title       string              `gorm:"type:varchar(200);not null"`
	Description string              `gorm:"type:text"`
	Images      []string            `gorm:"type:text;serializer:json"`
	InStock     int                 `gorm:"not null;default:0;index"`
	Price       decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Sizes       []catalog.Size      `gorm:"type:text;serializer:json"`
	Tags        []string            `gorm:"type:text;serializer:json"`
	Type        catalog.ProductType `gorm:"type:varchar(20);not null"`
	Gender      catalog.Gender      `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Slug:              m.Slug,
		Title:             m.Title,
		Description:       m.Description,
		Images:            nonNilStrings(m.Images),
		InStock:           m.InStock,
		Price:             m.Price,
		Sizes:             nonNilSizes(m.Sizes),
		Tags:              nonNilStrings(m.Tags),
		Type:              m.Type,
		Gender:            m.Gender,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Slug = p.Slug
	m.Title = p.Title
	m.Description = p.Description
	m.Images = nonNilStrings(p.Images)
	m.InStock = p.InStock
	m.Price = p.Price
	m.Sizes = nonNilSizes(p.Sizes)
	m.Tags = nonNilStrings(p.Tags)
	m.Type = p.Type
	m.Gender = p.Gender
}

// ProductModelFromDomain creates a new ProductModel from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilSizes(s []catalog.Size) []catalog.Size {
	if s == nil {
		return []catalog.Size{}
	}
	return s
}
