package dashboard

// PurchaseRow is one line of the recent purchases table.
type PurchaseRow struct {
	ID         string  `json:"id"`
	Product    string  `json:"product"`
	Seller     string  `json:"seller"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	TotalPrice float64 `json:"totalPrice"`
	Date       string  `json:"date"`
}

// DefaultPurchaseLimit caps the dashboard purchases table.
const DefaultPurchaseLimit = 10

// PurchaseRows maps a raw purchase listing onto table rows, keeping at most
// limit rows in payload order. A non-positive limit keeps every row.
func PurchaseRows(raw any, limit int) []PurchaseRow {
	rows := Rows(raw)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]PurchaseRow, 0, len(rows))
	for _, row := range rows {
		p := PurchaseRow{
			ID:        row.String("_id", "id"),
			Product:   row.String("productName", "product"),
			Seller:    row.String("sellerName", "seller"),
			Quantity:  row.Count("quantity"),
			UnitPrice: row.Amount("unitPrice", "price"),
		}
		if p.Product == "" {
			p.Product = row.Nested("product").String("name")
		}
		if p.Seller == "" {
			p.Seller = row.Nested("seller").String("name")
		}
		p.TotalPrice = row.Amount("totalPrice", "total")
		if !row.Has("totalPrice", "total") {
			p.TotalPrice = p.UnitPrice * float64(p.Quantity)
		}
		if t, ok := ParseDate(row.String("date", "createdAt")); ok {
			p.Date = DateLabel(t)
		}
		out = append(out, p)
	}
	return out
}
