package dashboard

import (
	"testing"
	"time"
)

func TestDayLabel(t *testing.T) {
	if got := DayLabel(5, 3, 2024); got != "5 Mar, 2024" {
		t.Fatalf("unexpected label %q", got)
	}
	for _, tc := range [][3]int{{0, 3, 2024}, {5, 0, 2024}, {5, 13, 2024}, {5, 3, 0}, {32, 1, 2024}} {
		if got := DayLabel(tc[0], tc[1], tc[2]); got != "" {
			t.Fatalf("expected blank label for %v, got %q", tc, got)
		}
	}
}

func TestDayLabelIsStable(t *testing.T) {
	first := DayLabel(12, 11, 2023)
	for i := 0; i < 10; i++ {
		if got := DayLabel(12, 11, 2023); got != first {
			t.Fatalf("label changed between calls: %q vs %q", first, got)
		}
	}
}

func TestWeekAndMonthLabels(t *testing.T) {
	if got := WeekLabel(18, 2025); got != "Week 18, 2025" {
		t.Fatalf("unexpected week label %q", got)
	}
	if got := WeekLabel(18, 0); got != "Week 18" {
		t.Fatalf("unexpected week label without year %q", got)
	}
	if got := WeekLabel(54, 2025); got != "" {
		t.Fatalf("expected blank label for invalid week, got %q", got)
	}
	if got := MonthLabel(3, 2024); got != "Mar 2024" {
		t.Fatalf("unexpected month label %q", got)
	}
	if got := MonthLabel(12, 0); got != "Dec" {
		t.Fatalf("unexpected month label without year %q", got)
	}
}

func TestParseDate(t *testing.T) {
	for _, value := range []string{"2025-05-10", "2025-05-10T08:30:00", "2025-05-10T08:30:00Z", "2025-05-10T08:30:00.123+07:00"} {
		ts, ok := ParseDate(value)
		if !ok {
			t.Fatalf("expected %q to parse", value)
		}
		if got := DateLabel(ts); got != "10 May, 2025" {
			t.Fatalf("unexpected label %q for %q", got, value)
		}
	}
	if _, ok := ParseDate("May 10"); ok {
		t.Fatalf("expected unknown layout to fail")
	}
	if got := DateLabel(time.Time{}); got != "" {
		t.Fatalf("expected zero time to render blank, got %q", got)
	}
}
