// Package report renders the yearly calendar grid into spreadsheet form.
// The layout is fixed: one header row, then per month a merged label cell
// spanning the month's week rows, seven day columns (Saturday..Friday) and
// the aggregate columns in the order below.
package report

import (
	"fmt"

	"workjournal/internal/calendar"
)

// Column headers in the report's fixed locale. Day columns run
// Saturday..Friday, matching the storage week convention.
var headers = []string{
	"Mėnuo", "Št", "Sk", "Pn", "An", "Tr", "Kt", "Pe",
	"Šeš.val.", "Sek.val.", "Pravažiuota (Km)", "Dirbta dienų",
	"Vairuota val.", "Kiti darbai", "Viso išdirbta", "Išmokėta", "Komentaras",
}

const (
	columnCount  = 17
	firstDayCol  = 2 // column B
	firstDataCol = 9 // column I, first aggregate column
)

// SheetName names the single worksheet for a year's report.
func SheetName(year int) string {
	return fmt.Sprintf("Kalendorius %d", year)
}

// Rows flattens the grid into plain values: the header row followed by one
// row per calendar week. The month label appears only on the first row of
// its month. Both the xlsx renderer's values and the Google Sheets mirror
// derive from this one layout.
func Rows(blocks []calendar.MonthBlock) ([][]any, error) {
	out := make([][]any, 0, 64)

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	out = append(out, header)

	for _, block := range blocks {
		for i, week := range block.Rows {
			if len(week.Cells) != calendar.DaysPerWeek {
				return nil, fmt.Errorf("%w: month %s row %d has %d cells",
					ErrRender, block.Month, i, len(week.Cells))
			}

			row := make([]any, columnCount)
			for c := range row {
				row[c] = ""
			}
			if i == 0 {
				row[0] = block.Label
			}
			for d, cell := range week.Cells {
				if !cell.Blank() {
					row[firstDayCol-1+d] = cell.Day
				}
			}
			if week.HasRecord {
				rec := week.Record
				agg := []any{
					rec.SaturdayHours, rec.SundayHours, rec.KilometersDriven,
					rec.DaysWorked, rec.HoursDriven,
					rec.OtherWork, rec.TotalWorked, rec.Paid, rec.Comment,
				}
				copy(row[firstDataCol-1:], agg)
			}
			out = append(out, row)
		}
	}

	return out, nil
}
