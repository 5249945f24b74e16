// Package calendar turns a year plus the sparse set of stored week records
// into the month-by-month grid the yearly report renders. It is a pure
// transformation with no I/O.
package calendar

import (
	"time"

	"workjournal/internal/core"
)

// DaysPerWeek is the fixed width of every WeekRow.
const DaysPerWeek = 7

// Month names in the report's fixed locale (Lithuanian).
var monthLabels = [12]string{
	"sausis", "vasaris", "kovas", "balandis", "gegužė", "birželis",
	"liepa", "rugpjūtis", "rugsėjis", "spalis", "lapkritis", "gruodis",
}

type (
	// Cell is one day slot in a week row. Day 0 marks padding before the
	// month's first day or after its last.
	Cell struct {
		Day  int
		Date core.WeekKey
	}

	// WeekRow is one rendered calendar row: seven day cells plus the
	// aggregate record bound to the row's anchor date, if one is stored.
	WeekRow struct {
		Cells     []Cell
		Anchor    core.WeekKey
		Record    core.WeekRecord
		HasRecord bool
		Vacation  bool
	}

	// MonthBlock groups the week rows covering one calendar month.
	MonthBlock struct {
		Month time.Month
		Label string
		Rows  []WeekRow
	}
)

// Blank reports whether the cell is month-boundary padding.
func (c Cell) Blank() bool {
	return c.Day == 0
}

// Build produces the twelve month blocks for year. Weeks run
// Saturday..Friday; day 1 of each month is padded into its weekday column
// and the final partial week is padded to seven cells. Each row is bound to
// the record whose key equals the row's anchor (the first non-blank cell's
// date); rows without a match carry a zero record.
func Build(year int, records map[core.WeekKey]core.WeekRecord) []MonthBlock {
	blocks := make([]MonthBlock, 0, 12)

	for month := time.January; month <= time.December; month++ {
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		daysInMonth := first.AddDate(0, 1, -1).Day()

		leading := (int(first.Weekday()) - int(core.WeekStartDay) + DaysPerWeek) % DaysPerWeek

		cells := make([]Cell, 0, leading+daysInMonth+DaysPerWeek-1)
		for i := 0; i < leading; i++ {
			cells = append(cells, Cell{})
		}
		for d := 1; d <= daysInMonth; d++ {
			cells = append(cells, Cell{
				Day:  d,
				Date: core.KeyAt(time.Date(year, month, d, 0, 0, 0, 0, time.UTC)),
			})
		}
		for len(cells)%DaysPerWeek != 0 {
			cells = append(cells, Cell{})
		}

		rows := make([]WeekRow, 0, len(cells)/DaysPerWeek)
		for start := 0; start < len(cells); start += DaysPerWeek {
			week := cells[start : start+DaysPerWeek]
			row := WeekRow{Cells: week, Anchor: anchorOf(week)}
			if rec, ok := records[row.Anchor]; ok {
				row.Record = rec
				row.HasRecord = true
				row.Vacation = rec.IsVacationWeek
			}
			rows = append(rows, row)
		}

		blocks = append(blocks, MonthBlock{
			Month: month,
			Label: monthLabels[month-1],
			Rows:  rows,
		})
	}

	return blocks
}

// anchorOf returns the date of the first non-blank cell. Every row contains
// at least one real day, so a zero key is unreachable here.
func anchorOf(week []Cell) core.WeekKey {
	for _, c := range week {
		if !c.Blank() {
			return c.Date
		}
	}
	return core.WeekKey{}
}
