package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-02-29", time.Local, 12)
	if err != nil {
		t.Fatal(err)
	}
	if got.Year() != 2024 || got.Month() != time.February || got.Day() != 29 || got.Hour() != 12 {
		t.Fatalf("ParseDate = %v", got)
	}
	if got.Location() != time.Local {
		t.Fatalf("location = %v, want Local", got.Location())
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "2023-02-29", "2024-04-31", "2024-00-10", "2024-1-5", "2024-01-01T00:00", "abcd-ef-gh"} {
		if _, err := ParseDate(s, time.UTC, 0); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) err = %v, want ErrInvalidDate", s, err)
		}
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, 3, 5, 23, 59, 0, 0, time.Local)
	if got := FormatDate(d); got != "2024-03-05" {
		t.Fatalf("FormatDate = %q, want 2024-03-05", got)
	}
}

func TestParseBillingCycle(t *testing.T) {
	tests := []struct {
		in      string
		want    BillingCycle
		wantErr bool
	}{
		{"", "", false},
		{"weekly", CycleWeekly, false},
		{" Quarterly ", CycleQuarterly, false},
		{"YEARLY", CycleYearly, false},
		{"daily", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBillingCycle(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseBillingCycle(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseBillingCycle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCostLabel(t *testing.T) {
	if got := BillingCycle("").CostLabel(); got != "Cost" {
		t.Errorf("absent CostLabel = %q, want Cost", got)
	}
	if got := CycleQuarterly.CostLabel(); got != "Quarterly Cost" {
		t.Errorf("quarterly CostLabel = %q", got)
	}
}

func TestLookupColor(t *testing.T) {
	if c, ok := LookupColor("#ef4444"); !ok || c.Name != "Red" {
		t.Fatalf("LookupColor(hex) = %+v, %v", c, ok)
	}
	if c, ok := LookupColor("Purple"); !ok || c.Value != "#A855F7" {
		t.Fatalf("LookupColor(name) = %+v, %v", c, ok)
	}
	if _, ok := LookupColor("#000000"); ok {
		t.Fatal("unexpected palette match")
	}
	if ColorName("#6B7280") != "Gray" {
		t.Fatalf("ColorName = %q", ColorName("#6B7280"))
	}
}
