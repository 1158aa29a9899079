package dashboard

import "strings"

// StatSummary holds the scalar rollups shown on the stat cards.
type StatSummary struct {
	TotalSales      float64 `json:"totalSales"`
	TotalOrders     int     `json:"totalOrders"`
	InventoryValue  float64 `json:"inventoryValue"`
	ActiveCustomers int     `json:"activeCustomers"`
}

var (
	priceKeys        = []string{"price", "unitPrice", "sellingPrice"}
	productStockKeys = []string{"quantity", "stock", "stockCount"}
)

// Summarize derives the stat cards from the selected sales records and the
// raw product and seller listings.
func Summarize(records []SalesRecord, products, sellers any) StatSummary {
	var summary StatSummary
	for _, record := range records {
		summary.TotalSales += record.TotalRevenue
		summary.TotalOrders += record.TotalQuantity
	}
	summary.InventoryValue = InventoryValue(products)
	summary.ActiveCustomers = ActiveSellers(sellers)
	return summary
}

// InventoryValue sums price times stock quantity across a product listing.
func InventoryValue(products any) float64 {
	total := 0.0
	for _, row := range Rows(products) {
		total += row.Amount(priceKeys...) * float64(row.Count(productStockKeys...))
	}
	return total
}

// ActiveSellers counts sellers without a status or with the "active" status.
func ActiveSellers(sellers any) int {
	count := 0
	for _, row := range Rows(sellers) {
		status := row.String("status")
		if status == "" || strings.EqualFold(status, "active") {
			count++
		}
	}
	return count
}
