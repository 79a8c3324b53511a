package report

// DashboardSummary is the read model behind the admin dashboard
type DashboardSummary struct {
	NumberOfOrders          int64 `json:"number_of_orders"`
	PaidOrders              int64 `json:"paid_orders"`
	NotPaidOrders           int64 `json:"not_paid_orders"`
	NumberOfClients         int64 `json:"number_of_clients"`
	NumberOfProducts        int64 `json:"number_of_products"`
	ProductsWithNoInventory int64 `json:"products_with_no_inventory"`
	LowInventory            int64 `json:"low_inventory"`
}

// NewDashboardSummary assembles the summary; unpaid orders are derived from the totals
func NewDashboardSummary(orders, paid, clients, products, noInventory, lowInventory int64) DashboardSummary {
	return DashboardSummary{
		NumberOfOrders:          orders,
		PaidOrders:              paid,
		NotPaidOrders:           orders - paid,
		NumberOfClients:         clients,
		NumberOfProducts:        products,
		ProductsWithNoInventory: noInventory,
		LowInventory:            lowInventory,
	}
}
