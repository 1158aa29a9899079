package dashboard

// BrandDistributionEntry is the product count of one brand.
type BrandDistributionEntry struct {
	BrandName    string `json:"brandName"`
	ProductCount int    `json:"productCount"`
}

var (
	brandKeys        = []string{"brandName", "brand", "name"}
	productCountKeys = []string{"productCount", "count", "products"}
)

// BrandDistribution groups aggregated brand rows by name in first-seen order.
func BrandDistribution(raw any) []BrandDistributionEntry {
	rows := Rows(raw)
	entries := make([]BrandDistributionEntry, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		name := row.String(brandKeys...)
		pos, ok := index[name]
		if !ok {
			pos = len(entries)
			index[name] = pos
			entries = append(entries, BrandDistributionEntry{BrandName: name})
		}
		entries[pos].ProductCount += row.Count(productCountKeys...)
	}
	return entries
}

// BrandsFromProducts derives the distribution from a raw product listing by
// counting products per brand. Products without a brand are skipped.
func BrandsFromProducts(raw any) []BrandDistributionEntry {
	rows := Rows(raw)
	entries := make([]BrandDistributionEntry, 0)
	index := make(map[string]int)
	for _, row := range rows {
		name := row.String("brand", "brandName")
		if name == "" {
			name = row.Nested("brand").String("name")
		}
		if name == "" {
			continue
		}
		pos, ok := index[name]
		if !ok {
			pos = len(entries)
			index[name] = pos
			entries = append(entries, BrandDistributionEntry{BrandName: name})
		}
		entries[pos].ProductCount++
	}
	return entries
}

// Slice is one segment of a pie chart.
type Slice struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent int     `json:"percent"`
	Color   string  `json:"color"`
}

// BrandSlices converts brand entries into pie segments.
func BrandSlices(entries []BrandDistributionEntry) []Slice {
	labels := make([]string, len(entries))
	values := make([]float64, len(entries))
	for i, entry := range entries {
		labels[i] = entry.BrandName
		values[i] = float64(entry.ProductCount)
	}
	return Slices(labels, values, nil)
}

// InventorySlices converts category statuses into pie segments by stock.
func InventorySlices(statuses []InventoryCategoryStatus) []Slice {
	labels := make([]string, len(statuses))
	values := make([]float64, len(statuses))
	colors := make([]string, len(statuses))
	for i, status := range statuses {
		labels[i] = status.CategoryName
		values[i] = float64(status.StockCount)
		colors[i] = status.DisplayColor
	}
	return Slices(labels, values, colors)
}

// Slices builds pie segments whose percentages are relative to the total of
// all values. A zero total yields zero percentages.
func Slices(labels []string, values []float64, colors []string) []Slice {
	total := 0.0
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	slices := make([]Slice, 0, len(labels))
	for i, label := range labels {
		value := 0.0
		if i < len(values) && values[i] > 0 {
			value = values[i]
		}
		color := ""
		if i < len(colors) {
			color = colors[i]
		}
		if color == "" {
			color = PaletteColor(i)
		}
		slices = append(slices, Slice{
			Label:   label,
			Value:   value,
			Percent: RoundedPercent(value, total),
			Color:   color,
		})
	}
	return slices
}
