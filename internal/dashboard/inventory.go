package dashboard

import (
	"math"
	"strings"
)

// Palette is the fixed colour cycle used for categorical charts.
var Palette = []string{"#6366f1", "#ec4899", "#f59e0b", "#10b981", "#3b82f6"}

// PaletteColor returns the palette colour for a zero-based position.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// InventoryCategoryStatus is the stock level of one product category.
type InventoryCategoryStatus struct {
	CategoryName  string `json:"categoryName"`
	StockCount    int    `json:"stockCount"`
	TotalCapacity int    `json:"totalCapacity"`
	DisplayColor  string `json:"displayColor"`
}

// Percent is the stock share of capacity; zero capacity yields zero.
func (s InventoryCategoryStatus) Percent() float64 {
	return Percent(float64(s.StockCount), float64(s.TotalCapacity))
}

// Percent computes part/whole as a percentage, returning 0 whenever the
// result would not be a finite number.
func Percent(part, whole float64) float64 {
	if whole == 0 || math.IsNaN(whole) || math.IsInf(whole, 0) {
		return 0
	}
	p := part / whole * 100
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p
}

// RoundedPercent is Percent rounded to the nearest whole number.
func RoundedPercent(part, whole float64) int {
	return int(math.Round(Percent(part, whole)))
}

var (
	categoryKeys = []string{"categoryName", "category", "name"}
	stockKeys    = []string{"stockCount", "stock", "quantity"}
	capacityKeys = []string{"totalCapacity", "total", "capacity"}
)

// InventoryStatuses groups raw category rows by name, summing stock and
// capacity. Colours supplied by the payload are kept, others come from the
// palette by first-seen position.
func InventoryStatuses(raw any) []InventoryCategoryStatus {
	rows := Rows(raw)
	statuses := make([]InventoryCategoryStatus, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		name := row.String(categoryKeys...)
		pos, ok := index[name]
		if !ok {
			pos = len(statuses)
			index[name] = pos
			statuses = append(statuses, InventoryCategoryStatus{
				CategoryName: name,
				DisplayColor: colorOf(row, pos),
			})
		}
		statuses[pos].StockCount += row.Count(stockKeys...)
		statuses[pos].TotalCapacity += row.Count(capacityKeys...)
	}
	return statuses
}

func colorOf(row Row, pos int) string {
	color := row.String("color", "displayColor")
	if strings.HasPrefix(color, "#") && (len(color) == 4 || len(color) == 7) {
		return color
	}
	return PaletteColor(pos)
}
