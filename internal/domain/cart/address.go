package cart

import (
	"strings"

	"github.com/charro/storefront/internal/domain/shared"
)

// ShippingAddress is where an order is delivered
type ShippingAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	Address2  string `json:"address2,omitempty"`
	Zip       string `json:"zip"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// Validate checks that every required field is present
func (a ShippingAddress) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"first name", a.FirstName},
		{"last name", a.LastName},
		{"address", a.Address},
		{"zip", a.Zip},
		{"city", a.City},
		{"country", a.Country},
		{"phone", a.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return shared.NewDomainError("INVALID_ADDRESS", "Shipping address "+f.name+" is required")
		}
	}
	return nil
}
