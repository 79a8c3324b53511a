package cart

import "github.com/shopspring/decimal"

// Summary is derived from the cart lines and never edited directly
type Summary struct {
	NumberOfItems int             `json:"number_of_items"`
	SubTotal      decimal.Decimal `json:"sub_total"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
}

// ComputeSummary totals the lines. Tax is subtotal times taxRate rounded to
// cents and is only charged when the cart holds at least one item.
func ComputeSummary(lines []LineItem, taxRate decimal.Decimal) Summary {
	count := 0
	subTotal := decimal.Zero
	for _, l := range lines {
		count += l.Quantity
		subTotal = subTotal.Add(l.LineTotal())
	}

	tax := decimal.Zero
	if count > 0 {
		tax = subTotal.Mul(taxRate).Round(2)
	}

	return Summary{
		NumberOfItems: count,
		SubTotal:      subTotal,
		Tax:           tax,
		Total:         subTotal.Add(tax),
	}
}
