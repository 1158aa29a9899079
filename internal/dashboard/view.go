package dashboard

// EmptySalesMessage replaces the sales chart when the selected range has no
// records.
const EmptySalesMessage = "No sales data available"

// Snapshot is the latest resolved payload of every dashboard query. A nil
// field means the query has not produced data.
type Snapshot struct {
	Sales      map[TimeRange]any
	Products   any
	Categories any
	Brands     any
	Sellers    any
	Purchases  any
}

// StatCard is one rendered stat card.
type StatCard struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// View is the complete dashboard view model for one time range.
type View struct {
	Range           TimeRange                 `json:"range"`
	Summary         StatSummary               `json:"summary"`
	Cards           []StatCard                `json:"cards"`
	Records         []SalesRecord             `json:"records"`
	Sales           SalesSeries               `json:"sales"`
	Inventory       []InventoryCategoryStatus `json:"inventory"`
	InventorySlices []Slice                   `json:"inventorySlices"`
	Brands          []BrandDistributionEntry  `json:"brands"`
	BrandSlices     []Slice                   `json:"brandSlices"`
	Purchases       []PurchaseRow             `json:"purchases"`
}

// Empty reports whether the selected sales range has nothing to chart.
func (v View) Empty() bool {
	return v.Sales.Empty()
}

// Build transforms a snapshot into the view model of the given range. It is a
// pure function of its inputs.
func Build(snap Snapshot, r TimeRange) View {
	r = ParseTimeRange(string(r))
	records := SalesRecords(snap.Sales[r], r)
	brands := BrandDistribution(snap.Brands)
	if len(brands) == 0 {
		brands = BrandsFromProducts(snap.Products)
	}
	inventory := InventoryStatuses(snap.Categories)
	summary := Summarize(records, snap.Products, snap.Sellers)
	return View{
		Range:           r,
		Summary:         summary,
		Cards:           Cards(summary),
		Records:         records,
		Sales:           BuildSalesSeries(records, r),
		Inventory:       inventory,
		InventorySlices: InventorySlices(inventory),
		Brands:          brands,
		BrandSlices:     BrandSlices(brands),
		Purchases:       PurchaseRows(snap.Purchases, DefaultPurchaseLimit),
	}
}

// Cards formats the rollups in display order.
func Cards(s StatSummary) []StatCard {
	return []StatCard{
		{Key: "total_sales", Title: "Total Sales", Value: Currency(s.TotalSales)},
		{Key: "total_orders", Title: "Total Orders", Value: Number(s.TotalOrders)},
		{Key: "inventory_value", Title: "Inventory Value", Value: Currency(s.InventoryValue)},
		{Key: "active_customers", Title: "Active Customers", Value: Number(s.ActiveCustomers)},
	}
}
