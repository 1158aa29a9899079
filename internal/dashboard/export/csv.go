// Package export writes dashboard view models as downloadable files.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shelf-inventory/shelf/internal/dashboard"
)

// WriteSummaryCSV serialises the stat cards of a view.
func WriteSummaryCSV(w io.Writer, v dashboard.View) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Range", v.Range.Title()},
		{"Total Sales", formatFloat(v.Summary.TotalSales)},
		{"Total Orders", strconv.Itoa(v.Summary.TotalOrders)},
		{"Inventory Value", formatFloat(v.Summary.InventoryValue)},
		{"Active Customers", strconv.Itoa(v.Summary.ActiveCustomers)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSalesCSV emits one row per sales period.
func WriteSalesCSV(w io.Writer, records []dashboard.SalesRecord) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Period", "Revenue", "Quantity"}); err != nil {
		return err
	}
	for _, record := range records {
		if err := writer.Write([]string{
			record.PeriodLabel,
			formatFloat(record.TotalRevenue),
			strconv.Itoa(record.TotalQuantity),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteInventoryCSV prints category stock levels with their fill rate.
func WriteInventoryCSV(w io.Writer, statuses []dashboard.InventoryCategoryStatus) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Category", "Stock", "Capacity", "Percent"}); err != nil {
		return err
	}
	for _, status := range statuses {
		if err := writer.Write([]string{
			status.CategoryName,
			strconv.Itoa(status.StockCount),
			strconv.Itoa(status.TotalCapacity),
			strconv.Itoa(dashboard.RoundedPercent(float64(status.StockCount), float64(status.TotalCapacity))),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteDashboardCSV writes the summary followed by the sales and inventory
// tables, separated by blank records.
func WriteDashboardCSV(w io.Writer, v dashboard.View) error {
	if err := WriteSummaryCSV(w, v); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	if err := WriteSalesCSV(w, v.Records); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return WriteInventoryCSV(w, v.Inventory)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
