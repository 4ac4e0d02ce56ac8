package reports

import (
	"testing"
	"time"
)

func TestGetDateRange_Daily(t *testing.T) {
	start, end, err := GetDateRange(DateRangeDaily, "", "")
	if err != nil {
		t.Fatalf("GetDateRange: %v", err)
	}

	now := time.Now()
	if start.Day() != now.Day() || start.Hour() != 0 || start.Minute() != 0 {
		t.Errorf("daily start must be midnight today, got %v", start)
	}
	if end.Sub(start) != 24*time.Hour-time.Second {
		t.Errorf("daily window = %v, want one day minus a second", end.Sub(start))
	}
}

func TestGetDateRange_Weekly(t *testing.T) {
	start, end, err := GetDateRange(DateRangeWeekly, "", "")
	if err != nil {
		t.Fatalf("GetDateRange: %v", err)
	}
	days := end.Sub(start).Hours() / 24
	if days < 6 || days > 7 {
		t.Errorf("weekly window spans %.1f days, want ~7", days)
	}
}

func TestGetDateRange_Monthly(t *testing.T) {
	start, end, err := GetDateRange(DateRangeMonthly, "", "")
	if err != nil {
		t.Fatalf("GetDateRange: %v", err)
	}
	now := time.Now()
	if start.Day() != 1 || start.Month() != now.Month() {
		t.Errorf("monthly start = %v, want first of current month", start)
	}
	if !end.After(start) {
		t.Error("monthly end must follow start")
	}
}

func TestGetDateRange_Custom(t *testing.T) {
	start, end, err := GetDateRange(DateRangeCustom, "2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("GetDateRange: %v", err)
	}
	if start.Year() != 2026 || start.Month() != time.January || start.Day() != 1 {
		t.Errorf("custom start = %v", start)
	}
	// End of day on the last date, so the whole day is included.
	if end.Day() != 31 || end.Hour() != 23 || end.Minute() != 59 {
		t.Errorf("custom end must cover the whole end day, got %v", end)
	}
}

func TestGetDateRange_CustomValidation(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
	}{
		{"missing both", "", ""},
		{"missing end", "2026-01-01", ""},
		{"bad format", "01/01/2026", "2026-01-31"},
		{"inverted range", "2026-02-01", "2026-01-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := GetDateRange(DateRangeCustom, tc.start, tc.end); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// An unknown preset falls back to the last 30 days.
func TestGetDateRange_DefaultsToLast30Days(t *testing.T) {
	start, end, err := GetDateRange("", "", "")
	if err != nil {
		t.Fatalf("GetDateRange: %v", err)
	}
	days := end.Sub(start).Hours() / 24
	if days < 29 || days > 30 {
		t.Errorf("default window spans %.1f days, want ~30", days)
	}
}
