package dashboard

import "sort"

// SalesRecord is one period of the sales chart.
type SalesRecord struct {
	PeriodLabel   string  `json:"periodLabel"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalQuantity int     `json:"totalQuantity"`
}

// SalesSeries is the chart-ready form of a sales record sequence.
type SalesSeries struct {
	Range    TimeRange `json:"range"`
	Labels   []string  `json:"labels"`
	Revenue  []float64 `json:"revenue"`
	Quantity []int     `json:"quantity"`
}

// Empty reports whether the series has no points to plot.
func (s SalesSeries) Empty() bool {
	return len(s.Labels) == 0
}

var (
	revenueKeys  = []string{"totalRevenue", "totalSales", "revenue"}
	quantityKeys = []string{"totalQuantity", "orders", "quantity"}

	periodLabelKeys = []string{"periodLabel", "label", "date"}
)

type salesBucket struct {
	key    int
	order  int
	record SalesRecord
}

// SalesRecords aggregates raw per-period sales rows for the given range. Rows
// sharing a period are summed and the result is ordered chronologically. Rows
// without calendar fields keep any label they carry and follow the dated rows
// in input order. Rows with neither are skipped.
func SalesRecords(raw any, r TimeRange) []SalesRecord {
	rows := Rows(raw)
	if len(rows) == 0 {
		return []SalesRecord{}
	}
	buckets := make(map[string]*salesBucket, len(rows))
	ordered := make([]*salesBucket, 0, len(rows))
	for _, row := range rows {
		label, key := salesPeriod(row, r)
		if label == "" {
			label, key = row.String(periodLabelKeys...), -1
		}
		if label == "" {
			continue
		}
		bucket, ok := buckets[label]
		if !ok {
			bucket = &salesBucket{key: key, order: len(ordered), record: SalesRecord{PeriodLabel: label}}
			buckets[label] = bucket
			ordered = append(ordered, bucket)
		}
		bucket.record.TotalRevenue += row.Amount(revenueKeys...)
		bucket.record.TotalQuantity += row.Count(quantityKeys...)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if (a.key < 0) != (b.key < 0) {
			return b.key < 0
		}
		if a.key != b.key {
			return a.key < b.key
		}
		return a.order < b.order
	})
	records := make([]SalesRecord, 0, len(ordered))
	for _, bucket := range ordered {
		records = append(records, bucket.record)
	}
	return records
}

func salesPeriod(row Row, r TimeRange) (string, int) {
	year := row.Int("year")
	month := row.Int("month")
	switch r {
	case RangeWeekly:
		week := row.Int("week", "weekNumber")
		return WeekLabel(week, year), year*100 + week
	case RangeMonthly:
		return MonthLabel(month, year), year*100 + month
	default:
		day := row.Int("day")
		if !row.Has("day", "month", "year") {
			if t, ok := ParseDate(row.String("date")); ok {
				day, month, year = t.Day(), int(t.Month()), t.Year()
			}
		}
		return DayLabel(day, month, year), year*10000 + month*100 + day
	}
}

// BuildSalesSeries splits records into parallel chart series.
func BuildSalesSeries(records []SalesRecord, r TimeRange) SalesSeries {
	series := SalesSeries{
		Range:    r,
		Labels:   make([]string, 0, len(records)),
		Revenue:  make([]float64, 0, len(records)),
		Quantity: make([]int, 0, len(records)),
	}
	for _, record := range records {
		series.Labels = append(series.Labels, record.PeriodLabel)
		series.Revenue = append(series.Revenue, record.TotalRevenue)
		series.Quantity = append(series.Quantity, record.TotalQuantity)
	}
	return series
}
