package dashboard

import (
	"encoding/json"
	"math"
	"testing"
)

func TestRowsDegradeToEmpty(t *testing.T) {
	cases := map[string]any{
		"nil":              nil,
		"empty object":     map[string]any{},
		"null data":        map[string]any{"data": nil},
		"string data":      map[string]any{"data": "oops"},
		"number data":      map[string]any{"data": 42},
		"object data":      map[string]any{"data": map[string]any{"total": 3}},
		"scalar":           "not a payload",
		"array of scalars": []any{1, "two", nil},
		"bad json":         json.RawMessage(`{"data":`),
		"json null":        json.RawMessage(`null`),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if rows := Rows(raw); len(rows) != 0 {
				t.Fatalf("expected empty sequence, got %v", rows)
			}
			if records := SalesRecords(raw, RangeDaily); len(records) != 0 {
				t.Fatalf("expected no sales records, got %v", records)
			}
			if statuses := InventoryStatuses(raw); len(statuses) != 0 {
				t.Fatalf("expected no inventory statuses, got %v", statuses)
			}
			if brands := BrandDistribution(raw); len(brands) != 0 {
				t.Fatalf("expected no brands, got %v", brands)
			}
			if rows := PurchaseRows(raw, 0); len(rows) != 0 {
				t.Fatalf("expected no purchases, got %v", rows)
			}
		})
	}
}

func TestRowsUnwrapsEnvelopes(t *testing.T) {
	item := map[string]any{"name": "Widget"}
	cases := map[string]any{
		"array":     []any{item},
		"typed":     []map[string]any{item},
		"data":      map[string]any{"data": []any{item}},
		"items":     map[string]any{"items": []any{item}},
		"paginated": map[string]any{"data": map[string]any{"data": []any{item}, "meta": map[string]any{"page": 1}}},
		"json":      json.RawMessage(`{"success":true,"data":[{"name":"Widget"}]}`),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			rows := Rows(raw)
			if len(rows) != 1 {
				t.Fatalf("expected one row, got %d", len(rows))
			}
			if got := rows[0].String("name"); got != "Widget" {
				t.Fatalf("unexpected name %q", got)
			}
		})
	}
}

func TestRowsStopsAtMaxDepth(t *testing.T) {
	var raw any = []any{map[string]any{"name": "deep"}}
	for i := 0; i <= maxEnvelopeDepth; i++ {
		raw = map[string]any{"data": raw}
	}
	if rows := Rows(raw); len(rows) != 0 {
		t.Fatalf("expected nested envelopes beyond the limit to be ignored, got %v", rows)
	}
}

func TestRowCoercion(t *testing.T) {
	row := Row{
		"price":    "12.5",
		"qty":      json.Number("3"),
		"negative": -4,
		"bad":      "abc",
		"nested":   map[string]any{"name": "inner"},
		"blank":    "  padded  ",
		"missing":  nil,
	}
	if got := row.Float("price"); got != 12.5 {
		t.Fatalf("expected 12.5, got %v", got)
	}
	if got := row.Int("qty"); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	huge := Row{"year": 1e20, "week": -1e20}
	if got := huge.Int("year"); got != math.MaxInt {
		t.Fatalf("expected huge values to saturate, got %d", got)
	}
	if got := huge.Count("week"); got != 0 {
		t.Fatalf("expected huge negative counts to clamp to 0, got %d", got)
	}
	if got := row.Count("negative"); got != 0 {
		t.Fatalf("expected negative counts to clamp to 0, got %d", got)
	}
	if got := row.Amount("bad"); got != 0 {
		t.Fatalf("expected malformed amount to be 0, got %v", got)
	}
	if got := row.Float("missing", "price"); got != 12.5 {
		t.Fatalf("expected fallback to the next key, got %v", got)
	}
	if got := row.String("nested"); got != "" {
		t.Fatalf("expected objects to render blank, got %q", got)
	}
	if got := row.Nested("nested").String("name"); got != "inner" {
		t.Fatalf("unexpected nested name %q", got)
	}
	if got := row.String("blank"); got != "padded" {
		t.Fatalf("expected trimmed text, got %q", got)
	}
}

func TestObjectUnwrapsSingleRecord(t *testing.T) {
	row := Object(map[string]any{"success": true, "data": map[string]any{"name": "Ada"}})
	if row.String("name") != "Ada" {
		t.Fatalf("unexpected object %v", row)
	}
	if got := Object([]any{1, 2}); len(got) != 0 {
		t.Fatalf("expected arrays to yield an empty record, got %v", got)
	}
	if got := Object(nil); got == nil {
		t.Fatalf("expected a usable empty record")
	}
}
