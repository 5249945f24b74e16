package report

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"workjournal/internal/calendar"
)

// ErrRender marks an internal grid inconsistency. It is a programming
// fault, not a user-recoverable condition.
var ErrRender = errors.New("report: grid invariant violated")

const (
	headerFill   = "D3D3D3" // light gray
	vacationFill = "F08080" // light coral
)

// Render builds the yearly workbook: one worksheet, header row, twelve
// month blocks with merged label cells, and a full-row highlight for
// vacation weeks. An empty block slice is not an error; the renderer falls
// back to the bare calendar so the file still carries all twelve months.
func Render(year int, blocks []calendar.MonthBlock) (*excelize.File, error) {
	if len(blocks) == 0 {
		blocks = calendar.Build(year, nil)
	}

	f := excelize.NewFile()
	sheet := SheetName(year)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("name worksheet: %w", err)
	}

	styles, err := newStyleSet(f)
	if err != nil {
		return nil, err
	}

	widths := make([]int, columnCount)

	for i, h := range headers {
		if err := setCell(f, sheet, i+1, 1, h, widths); err != nil {
			return nil, err
		}
	}
	if err := styleRange(f, sheet, 1, 1, columnCount, 1, styles.header); err != nil {
		return nil, err
	}

	row := 2
	for _, block := range blocks {
		monthStart := row
		monthVacation := false

		for i, week := range block.Rows {
			if len(week.Cells) != calendar.DaysPerWeek {
				return nil, fmt.Errorf("%w: month %s row %d has %d cells",
					ErrRender, block.Month, i, len(week.Cells))
			}

			for d, cell := range week.Cells {
				if cell.Blank() {
					continue
				}
				if err := setCell(f, sheet, firstDayCol+d, row, cell.Day, widths); err != nil {
					return nil, err
				}
			}

			if week.HasRecord {
				rec := week.Record
				agg := []any{
					rec.SaturdayHours, rec.SundayHours, rec.KilometersDriven,
					rec.DaysWorked, rec.HoursDriven,
					rec.OtherWork, rec.TotalWorked, rec.Paid, rec.Comment,
				}
				for j, v := range agg {
					if err := setCell(f, sheet, firstDataCol+j, row, v, widths); err != nil {
						return nil, err
					}
				}
			}

			if week.Vacation {
				if i == 0 {
					monthVacation = true
				}
				if err := styleRange(f, sheet, 1, row, columnCount, row, styles.vacation); err != nil {
					return nil, err
				}
			}

			row++
		}

		if err := setCell(f, sheet, 1, monthStart, block.Label, widths); err != nil {
			return nil, err
		}
		labelStyle := styles.month
		if monthVacation {
			labelStyle = styles.monthVacation
		}
		if err := styleRange(f, sheet, 1, monthStart, 1, monthStart, labelStyle); err != nil {
			return nil, err
		}

		start, err := excelize.CoordinatesToCellName(1, monthStart)
		if err != nil {
			return nil, fmt.Errorf("month label cell: %w", err)
		}
		end, err := excelize.CoordinatesToCellName(1, row-1)
		if err != nil {
			return nil, fmt.Errorf("month label cell: %w", err)
		}
		if err := f.MergeCell(sheet, start, end); err != nil {
			return nil, fmt.Errorf("merge month label %s: %w", block.Label, err)
		}
	}

	if err := sizeColumns(f, sheet, widths); err != nil {
		return nil, err
	}

	return f, nil
}

type styleSet struct {
	header        int
	month         int
	monthVacation int
	vacation      int
}

func newStyleSet(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}

	s.month, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Vertical: "center"},
	})
	if err != nil {
		return s, fmt.Errorf("month style: %w", err)
	}

	s.monthVacation, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{vacationFill}},
		Alignment: &excelize.Alignment{Vertical: "center"},
	})
	if err != nil {
		return s, fmt.Errorf("month vacation style: %w", err)
	}

	s.vacation, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{vacationFill}},
	})
	if err != nil {
		return s, fmt.Errorf("vacation style: %w", err)
	}

	return s, nil
}

func setCell(f *excelize.File, sheet string, col, row int, v any, widths []int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell %d,%d: %w", col, row, err)
	}
	if err := f.SetCellValue(sheet, cell, v); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	if w := utf8.RuneCountInString(fmt.Sprint(v)); w > widths[col-1] {
		widths[col-1] = w
	}
	return nil
}

func styleRange(f *excelize.File, sheet string, c1, r1, c2, r2, style int) error {
	start, err := excelize.CoordinatesToCellName(c1, r1)
	if err != nil {
		return fmt.Errorf("style range: %w", err)
	}
	end, err := excelize.CoordinatesToCellName(c2, r2)
	if err != nil {
		return fmt.Errorf("style range: %w", err)
	}
	if err := f.SetCellStyle(sheet, start, end, style); err != nil {
		return fmt.Errorf("apply style %s:%s: %w", start, end, err)
	}
	return nil
}

// sizeColumns approximates the original AdjustToContents: each column is
// widened to its longest rendered value.
func sizeColumns(f *excelize.File, sheet string, widths []int) error {
	for i, w := range widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("column %d: %w", i+1, err)
		}
		if err := f.SetColWidth(sheet, name, name, float64(w)+2); err != nil {
			return fmt.Errorf("size column %s: %w", name, err)
		}
	}
	return nil
}
