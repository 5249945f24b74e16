package core

import (
	"errors"
	"testing"
	"time"
)

func TestNewWeekKeyNormalizesToSaturday(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-01-06", "2024-01-06"}, // Saturday stays put
		{"2024-01-07", "2024-01-06"}, // Sunday
		{"2024-01-08", "2024-01-06"}, // Monday
		{"2024-01-12", "2024-01-06"}, // Friday, end of the same week
		{"2024-01-13", "2024-01-13"}, // next Saturday
		{"2025-01-01", "2024-12-28"}, // normalization crosses the year boundary
	}
	for _, tc := range cases {
		in, err := time.Parse(KeyDateLayout, tc.in)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.in, err)
		}
		got := NewWeekKey(in)
		if got.String() != tc.want {
			t.Fatalf("NewWeekKey(%s) = %s, want %s", tc.in, got, tc.want)
		}
		if got.Weekday() != WeekStartDay {
			t.Fatalf("NewWeekKey(%s) fell on %s", tc.in, got.Weekday())
		}
	}
}

func TestNewWeekKeyDropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("EET", 2*60*60)
	in := time.Date(2024, 3, 9, 23, 45, 0, 0, loc) // a Saturday evening
	got := NewWeekKey(in)
	if got.String() != "2024-03-09" {
		t.Fatalf("got %s, want 2024-03-09", got)
	}
	if h, m, s := got.Clock(); h != 0 || m != 0 || s != 0 {
		t.Fatalf("key carries a time component: %s", got.Time)
	}
}

func TestParseWeekKey(t *testing.T) {
	k, err := ParseWeekKey("2024-12-28")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.Year() != 2024 {
		t.Fatalf("year = %d, want 2024", k.Year())
	}

	if _, err := ParseWeekKey("28/12/2024"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestWeekRecordValidate(t *testing.T) {
	good := WeekRecord{SaturdayHours: 8, KilometersDriven: 120, Paid: "350"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (WeekRecord{}).Validate(); err != nil {
		t.Fatalf("zero record should validate, got %v", err)
	}

	bads := []WeekRecord{
		{SaturdayHours: -1},
		{SundayHours: -2},
		{KilometersDriven: -10},
		{DaysWorked: -1},
		{HoursDriven: -5},
	}
	for i, r := range bads {
		if err := r.Validate(); !errors.Is(err, ErrNegativeValue) {
			t.Fatalf("case %d expected ErrNegativeValue, got %v", i, err)
		}
	}
}
