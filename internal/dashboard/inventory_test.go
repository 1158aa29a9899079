package dashboard

import (
	"math"
	"testing"
)

func TestInventoryPercentGuardsZeroCapacity(t *testing.T) {
	statuses := InventoryStatuses([]any{
		map[string]any{"category": "Beauty", "stock": 40, "total": 0},
		map[string]any{"category": "Sports", "stock": 0, "total": 0},
	})
	if len(statuses) != 2 {
		t.Fatalf("expected two statuses, got %d", len(statuses))
	}
	for _, status := range statuses {
		p := status.Percent()
		if p != 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			t.Fatalf("expected 0%% for %s, got %v", status.CategoryName, p)
		}
	}
}

func TestInventoryStatuses(t *testing.T) {
	statuses := InventoryStatuses(map[string]any{"data": []any{
		map[string]any{"category": "Electronics", "stock": 120, "total": 500, "color": "#6366f1"},
		map[string]any{"categoryName": "Clothing", "stockCount": 80, "totalCapacity": 200, "color": "pink"},
		map[string]any{"category": "Electronics", "stock": 30, "total": 100},
	}})
	if len(statuses) != 2 {
		t.Fatalf("expected merged categories, got %v", statuses)
	}
	electronics := statuses[0]
	if electronics.StockCount != 150 || electronics.TotalCapacity != 600 {
		t.Fatalf("unexpected electronics totals %+v", electronics)
	}
	if electronics.Percent() != 25 {
		t.Fatalf("expected 25%%, got %v", electronics.Percent())
	}
	if statuses[1].DisplayColor != Palette[1] {
		t.Fatalf("expected palette colour for invalid token, got %q", statuses[1].DisplayColor)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(1, 0); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := Percent(1, math.NaN()); got != 0 {
		t.Fatalf("expected 0 for NaN denominator, got %v", got)
	}
	if got := RoundedPercent(1, 3); got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}
}

func TestSlicesPercentages(t *testing.T) {
	slices := BrandSlices([]BrandDistributionEntry{
		{BrandName: "Brand A", ProductCount: 150},
		{BrandName: "Brand B", ProductCount: 50},
	})
	if slices[0].Percent != 75 || slices[1].Percent != 25 {
		t.Fatalf("unexpected percentages %+v", slices)
	}
	if slices[0].Color != Palette[0] || slices[1].Color != Palette[1] {
		t.Fatalf("expected palette colours, got %+v", slices)
	}

	zero := BrandSlices([]BrandDistributionEntry{{BrandName: "Empty"}})
	if zero[0].Percent != 0 {
		t.Fatalf("expected zero total to yield 0%%, got %d", zero[0].Percent)
	}
}

func TestBrandsFromProducts(t *testing.T) {
	entries := BrandsFromProducts([]any{
		map[string]any{"name": "Phone", "brand": "Acme"},
		map[string]any{"name": "Cable", "brand": map[string]any{"name": "Volt"}},
		map[string]any{"name": "Case", "brand": "Acme"},
		map[string]any{"name": "Loose"},
	})
	if len(entries) != 2 {
		t.Fatalf("expected two brands, got %v", entries)
	}
	if entries[0] != (BrandDistributionEntry{BrandName: "Acme", ProductCount: 2}) {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1] != (BrandDistributionEntry{BrandName: "Volt", ProductCount: 1}) {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
}
