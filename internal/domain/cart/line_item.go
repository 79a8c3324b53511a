package cart

import (
	"github.com/charro/storefront/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one product/size pair held in a cart.
// Two lines never share both ProductID and Size.
type LineItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Slug      string          `json:"slug"`
	Title     string          `json:"title"`
	Image     string          `json:"image"`
	Gender    catalog.Gender  `json:"gender"`
	Size      catalog.Size    `json:"size"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// SameLine reports whether two items share the (product, size) key
func (l LineItem) SameLine(other LineItem) bool {
	return l.ProductID == other.ProductID && l.Size == other.Size
}

// LineTotal returns price times quantity
func (l LineItem) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// AddLine merges item into lines and returns the new list.
// A product not yet in the cart, or present only in other sizes, is appended.
// A matching (product, size) line has its quantity increased instead.
func AddLine(lines []LineItem, item LineItem) []LineItem {
	result := make([]LineItem, 0, len(lines)+1)
	merged := false
	for _, l := range lines {
		if !merged && l.SameLine(item) {
			l.Quantity += item.Quantity
			merged = true
		}
		result = append(result, l)
	}
	if !merged {
		result = append(result, item)
	}
	return result
}

// UpdateQuantity sets the quantity of the line matching item
func UpdateQuantity(lines []LineItem, item LineItem) []LineItem {
	result := make([]LineItem, 0, len(lines))
	for _, l := range lines {
		if l.SameLine(item) {
			l.Quantity = item.Quantity
		}
		result = append(result, l)
	}
	return result
}

// RemoveLine drops the line matching item
func RemoveLine(lines []LineItem, item LineItem) []LineItem {
	result := make([]LineItem, 0, len(lines))
	for _, l := range lines {
		if l.SameLine(item) {
			continue
		}
		result = append(result, l)
	}
	return result
}

// NormalizeLines rebuilds a list that may break the line invariants, such as
// a cart read back from storage. Lines with a non-positive quantity or an
// unknown size are dropped and duplicate (product, size) lines are merged.
func NormalizeLines(lines []LineItem) []LineItem {
	result := []LineItem{}
	for _, l := range lines {
		if l.Quantity <= 0 || !l.Size.IsValid() {
			continue
		}
		result = AddLine(result, l)
	}
	return result
}

func cloneLines(lines []LineItem) []LineItem {
	if lines == nil {
		return []LineItem{}
	}
	return append(make([]LineItem, 0, len(lines)), lines...)
}
