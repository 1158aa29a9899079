package dashboard

import "strings"

// TimeRange selects which pre-fetched sales dataset feeds the sales chart.
type TimeRange string

const (
	RangeDaily   TimeRange = "daily"
	RangeWeekly  TimeRange = "weekly"
	RangeMonthly TimeRange = "monthly"
)

// DefaultRange is shown when no range has been selected.
const DefaultRange = RangeWeekly

// TimeRanges lists the toggle values in display order.
var TimeRanges = []TimeRange{RangeDaily, RangeWeekly, RangeMonthly}

// ParseTimeRange maps user input onto the closed set of ranges. Unknown input
// selects DefaultRange.
func ParseTimeRange(value string) TimeRange {
	switch TimeRange(strings.ToLower(strings.TrimSpace(value))) {
	case RangeDaily:
		return RangeDaily
	case RangeWeekly:
		return RangeWeekly
	case RangeMonthly:
		return RangeMonthly
	default:
		return DefaultRange
	}
}

// Title is the toggle caption.
func (r TimeRange) Title() string {
	switch r {
	case RangeDaily:
		return "Daily"
	case RangeMonthly:
		return "Monthly"
	default:
		return "Weekly"
	}
}
