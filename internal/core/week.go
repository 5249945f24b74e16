package core

import (
	"errors"
	"fmt"
	"time"
)

// WeekStartDay is the single week-start convention used across the whole
// system: the work week runs Saturday through Friday, both in storage keys
// and in the calendar grid columns.
const WeekStartDay = time.Saturday

// KeyDateLayout is the on-disk representation of a WeekKey: an ISO date,
// no time component, no timezone.
const KeyDateLayout = "2006-01-02"

type (
	// WeekKey identifies the week a record belongs to. It is a plain
	// calendar date at midnight UTC; for stored records it is always the
	// Saturday that starts the week.
	WeekKey struct {
		time.Time
	}

	// WeekRecord holds the user-entered values for one week. The zero
	// value is a valid, empty record; absence of a row for a key is a
	// different state from an all-zero record.
	WeekRecord struct {
		SaturdayHours    int
		SundayHours      int
		KilometersDriven int
		DaysWorked       int
		HoursDriven      int
		OtherWork        string
		TotalWorked      string
		Paid             string
		Comment          string
		IsVacationWeek   bool
	}
)

var (
	ErrNegativeValue = errors.New("negative value")
	ErrInvalidKey    = errors.New("invalid week key")
)

// KeyAt truncates t to its calendar date in UTC without changing the day.
// Used for grid row anchors, which may fall on any weekday.
func KeyAt(t time.Time) WeekKey {
	return WeekKey{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// NewWeekKey normalizes t to the Saturday on or before it, producing the
// storage key for the week containing t.
func NewWeekKey(t time.Time) WeekKey {
	k := KeyAt(t)
	back := (int(k.Weekday()) - int(WeekStartDay) + 7) % 7
	return WeekKey{Time: k.AddDate(0, 0, -back)}
}

// ParseWeekKey parses an ISO date into a WeekKey without normalizing it.
func ParseWeekKey(s string) (WeekKey, error) {
	t, err := time.ParseInLocation(KeyDateLayout, s, time.UTC)
	if err != nil {
		return WeekKey{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	return WeekKey{Time: t}, nil
}

func (k WeekKey) String() string {
	return k.Format(KeyDateLayout)
}

// Year returns the calendar year of the key date itself. A week spanning
// two years is attributed by its start date only.
func (k WeekKey) Year() int {
	return k.Time.Year()
}

func (k WeekKey) IsZero() bool {
	return k.Time.IsZero()
}

// Validate rejects records that must not reach the store. Text fields are
// opaque to the system and are not constrained.
func (r WeekRecord) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"saturday hours", r.SaturdayHours},
		{"sunday hours", r.SundayHours},
		{"kilometers driven", r.KilometersDriven},
		{"days worked", r.DaysWorked},
		{"hours driven", r.HoursDriven},
	}
	for _, c := range checks {
		if c.value < 0 {
			return fmt.Errorf("%s: %w", c.name, ErrNegativeValue)
		}
	}
	return nil
}
