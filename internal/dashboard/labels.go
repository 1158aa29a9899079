package dashboard

import (
	"strconv"
	"time"
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthName returns the short month name for a 1-based month, or "" when the
// month is out of range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// DayLabel renders a calendar day as "5 Mar, 2024".
func DayLabel(day, month, year int) string {
	name := MonthName(month)
	if name == "" || day < 1 || day > 31 || year <= 0 {
		return ""
	}
	return strconv.Itoa(day) + " " + name + ", " + strconv.Itoa(year)
}

// WeekLabel renders a week index as "Week 18, 2025", omitting a missing year.
func WeekLabel(week, year int) string {
	if week < 1 || week > 53 {
		return ""
	}
	label := "Week " + strconv.Itoa(week)
	if year > 0 {
		label += ", " + strconv.Itoa(year)
	}
	return label
}

// MonthLabel renders a month as "Mar 2024", omitting a missing year.
func MonthLabel(month, year int) string {
	name := MonthName(month)
	if name == "" {
		return ""
	}
	if year > 0 {
		return name + " " + strconv.Itoa(year)
	}
	return name
}

// DateLabel renders a timestamp with DayLabel. The zero time renders blank.
func DateLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return DayLabel(t.Day(), int(t.Month()), t.Year())
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate accepts the timestamp layouts produced by the upstream API.
func ParseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
