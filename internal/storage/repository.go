package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"workjournal/internal/core"

	_ "modernc.org/sqlite"
)

// ErrUnavailable signals that the backing database could not be opened or
// created. Operations never surface it for a missing row.
var ErrUnavailable = errors.New("storage unavailable")

// Repository owns the week_data table. One row per week key; writes are
// single-statement upserts, so concurrent saves of the same key cannot
// produce a lost update.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %v", ErrUnavailable, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %v", ErrUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", ErrUnavailable, err)
	}

	// Bounded wait on a locked database instead of hanging.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: set busy timeout: %v", ErrUnavailable, err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: run migrations: %v", ErrUnavailable, err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const upsertWeekQuery = `INSERT INTO week_data
	(week_start, saturday_hours, sunday_hours, kilometers_driven, days_worked,
	 hours_driven, other_work, total_worked, paid, comment, is_vacation_week)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(week_start) DO UPDATE SET
		saturday_hours = excluded.saturday_hours,
		sunday_hours = excluded.sunday_hours,
		kilometers_driven = excluded.kilometers_driven,
		days_worked = excluded.days_worked,
		hours_driven = excluded.hours_driven,
		other_work = excluded.other_work,
		total_worked = excluded.total_worked,
		paid = excluded.paid,
		comment = excluded.comment,
		is_vacation_week = excluded.is_vacation_week`

// UpsertWeek inserts the record for key or replaces every field of the
// existing row, as one statement.
func (r *Repository) UpsertWeek(ctx context.Context, key core.WeekKey, rec core.WeekRecord) error {
	_, err := r.db.ExecContext(ctx, upsertWeekQuery,
		key.String(),
		rec.SaturdayHours,
		rec.SundayHours,
		rec.KilometersDriven,
		rec.DaysWorked,
		rec.HoursDriven,
		rec.OtherWork,
		rec.TotalWorked,
		rec.Paid,
		rec.Comment,
		boolToInt(rec.IsVacationWeek),
	)
	if err != nil {
		return fmt.Errorf("upserting week %s: %w", key, err)
	}

	slog.InfoContext(ctx, "Week saved",
		"week_start", key.String(),
		"days_worked", rec.DaysWorked,
		"vacation", rec.IsVacationWeek)

	return nil
}

const loadWeekQuery = `SELECT saturday_hours, sunday_hours, kilometers_driven, days_worked,
	hours_driven, other_work, total_worked, paid, comment, is_vacation_week
	FROM week_data WHERE week_start = ? LIMIT 1`

// LoadWeek returns the record stored under key, or (nil, nil) when no row
// matches; a missing week is not an error.
func (r *Repository) LoadWeek(ctx context.Context, key core.WeekKey) (*core.WeekRecord, error) {
	row := r.db.QueryRowContext(ctx, loadWeekQuery, key.String())

	var rec core.WeekRecord
	var vacation int
	err := row.Scan(
		&rec.SaturdayHours, &rec.SundayHours, &rec.KilometersDriven,
		&rec.DaysWorked, &rec.HoursDriven,
		&rec.OtherWork, &rec.TotalWorked, &rec.Paid, &rec.Comment,
		&vacation,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning week %s: %w", key, err)
	}
	rec.IsVacationWeek = vacation == 1
	return &rec, nil
}

const loadYearQuery = `SELECT week_start, saturday_hours, sunday_hours, kilometers_driven,
	days_worked, hours_driven, other_work, total_worked, paid, comment, is_vacation_week
	FROM week_data
	WHERE strftime('%Y', week_start) = ?
	ORDER BY week_start`

// LoadYear returns every stored week whose key date falls inside year.
// Attribution follows the key itself, so a week starting 2024-12-28 belongs
// to 2024 even though it ends in 2025.
func (r *Repository) LoadYear(ctx context.Context, year int) (map[core.WeekKey]core.WeekRecord, error) {
	rows, err := r.db.QueryContext(ctx, loadYearQuery, fmt.Sprintf("%04d", year))
	if err != nil {
		return nil, fmt.Errorf("listing weeks for %d: %w", year, err)
	}
	defer rows.Close()

	out := make(map[core.WeekKey]core.WeekRecord)
	for rows.Next() {
		var keyStr string
		var rec core.WeekRecord
		var vacation int
		err := rows.Scan(
			&keyStr,
			&rec.SaturdayHours, &rec.SundayHours, &rec.KilometersDriven,
			&rec.DaysWorked, &rec.HoursDriven,
			&rec.OtherWork, &rec.TotalWorked, &rec.Paid, &rec.Comment,
			&vacation,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning week row: %w", err)
		}
		key, err := core.ParseWeekKey(keyStr)
		if err != nil {
			return nil, fmt.Errorf("stored week key %q: %w", keyStr, err)
		}
		rec.IsVacationWeek = vacation == 1
		out[key] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating weeks for %d: %w", year, err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
