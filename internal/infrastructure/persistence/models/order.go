package models

import (
	"time"

	"github.com/charro/storefront/internal/domain/cart"
	"github.com/charro/storefront/internal/domain/catalog"
	"github.com/charro/storefront/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	UserID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	Items         []OrderItemModel     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Shipping      ShippingAddressModel `gorm:"embedded;embeddedPrefix:shipping_"`
	NumberOfItems int                  `gorm:"not null"`
	SubTotal      decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Tax           decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	Total         decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	IsPaid        bool                 `gorm:"not null;default:false;index"`
	PaidAt        *time.Time
	TransactionID string `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ShippingAddressModel is embedded into the orders table
type ShippingAddressModel struct {
	FirstName string `gorm:"type:varchar(100);not null"`
	LastName  string `gorm:"type:varchar(100);not null"`
	Address   string `gorm:"type:varchar(255);not null"`
	Address2  string `gorm:"type:varchar(255)"`
	Zip       string `gorm:"type:varchar(20);not null"`
	City      string `gorm:"type:varchar(100);not null"`
	Country   string `gorm:"type:varchar(100);not null"`
	Phone     string `gorm:"type:varchar(50);not null"`
}

// OrderItemModel is the persistence model for an order line.
type OrderItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Slug      string          `gorm:"type:varchar(200);not null"`
	Title     string          `gorm:"type:varchar(200);not null"`
	Image     string          `gorm:"type:varchar(500)"`
	Gender    catalog.Gender  `gorm:"type:varchar(20)"`
	Size      catalog.Size    `gorm:"type:varchar(10);not null"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order entity.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		UserID:            m.UserID,
		Items:             make([]order.Item, 0, len(m.Items)),
		ShippingAddress: cart.ShippingAddress{
			FirstName: m.Shipping.FirstName,
			LastName:  m.Shipping.LastName,
			Address:   m.Shipping.Address,
			Address2:  m.Shipping.Address2,
			Zip:       m.Shipping.Zip,
			City:      m.Shipping.City,
			Country:   m.Shipping.Country,
			Phone:     m.Shipping.Phone,
		},
		NumberOfItems: m.NumberOfItems,
		SubTotal:      m.SubTotal,
		Tax:           m.Tax,
		Total:         m.Total,
		IsPaid:        m.IsPaid,
		PaidAt:        m.PaidAt,
		TransactionID: m.TransactionID,
	}
	for _, item := range m.Items {
		o.Items = append(o.Items, order.Item{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Slug:      item.Slug,
			Title:     item.Title,
			Image:     item.Image,
			Gender:    item.Gender,
			Size:      item.Size,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return o
}

// FromDomain populates the persistence model from a domain Order entity.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.UserID = o.UserID
	m.Shipping = ShippingAddressModel{
		FirstName: o.ShippingAddress.FirstName,
		LastName:  o.ShippingAddress.LastName,
		Address:   o.ShippingAddress.Address,
		Address2:  o.ShippingAddress.Address2,
		Zip:       o.ShippingAddress.Zip,
		City:      o.ShippingAddress.City,
		Country:   o.ShippingAddress.Country,
		Phone:     o.ShippingAddress.Phone,
	}
	m.NumberOfItems = o.NumberOfItems
	m.SubTotal = o.SubTotal
	m.Tax = o.Tax
	m.Total = o.Total
	m.IsPaid = o.IsPaid
	m.PaidAt = o.PaidAt
	m.TransactionID = o.TransactionID

	m.Items = make([]OrderItemModel, 0, len(o.Items))
	for _, item := range o.Items {
		m.Items = append(m.Items, OrderItemModel{
			ID:        item.ID,
			OrderID:   o.ID,
			ProductID: item.ProductID,
			Slug:      item.Slug,
			Title:     item.Title,
			Image:     item.Image,
			Gender:    item.Gender,
			Size:      item.Size,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
}

// OrderModelFromDomain creates a new OrderModel from a domain Order entity.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}
