package storage

import (
	"context"
	"path/filepath"
	"testing"

	"workjournal/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "workjournal.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func key(t *testing.T, s string) core.WeekKey {
	t.Helper()
	k, err := core.ParseWeekKey(s)
	if err != nil {
		t.Fatalf("parse key %s: %v", s, err)
	}
	return k
}

func TestInitializationIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "workjournal.db")

	first, err := NewRepository(dbPath)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	k := key(t, "2024-03-02")
	if err := first.UpsertWeek(context.Background(), k, core.WeekRecord{DaysWorked: 3}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	first.Close()

	// Reopening runs migrations again; existing rows must survive.
	second, err := NewRepository(dbPath)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()

	rec, err := second.LoadWeek(context.Background(), k)
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	if rec == nil || rec.DaysWorked != 3 {
		t.Fatalf("row lost across reopen: %+v", rec)
	}
}

func TestUpsertRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	k := key(t, "2024-01-06")

	want := core.WeekRecord{
		SaturdayHours:    8,
		SundayHours:      4,
		KilometersDriven: 120,
		DaysWorked:       5,
		HoursDriven:      6,
		OtherWork:        "sandėlio tvarkymas",
		TotalWorked:      "46 val.",
		Paid:             "550",
		Comment:          "ilga savaitė",
		IsVacationWeek:   false,
	}
	if err := repo.UpsertWeek(ctx, k, want); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.LoadWeek(ctx, k)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatalf("expected a record")
	}
	if *got != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", *got, want)
	}
}

func TestUpsertIsIdempotentAndOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	k := key(t, "2024-05-04")

	r1 := core.WeekRecord{SaturdayHours: 8, Paid: "300"}
	if err := repo.UpsertWeek(ctx, k, r1); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := repo.UpsertWeek(ctx, k, r1); err != nil {
		t.Fatalf("repeat upsert: %v", err)
	}

	got, err := repo.LoadWeek(ctx, k)
	if err != nil || got == nil || *got != r1 {
		t.Fatalf("idempotent upsert changed state: %+v err=%v", got, err)
	}

	r2 := core.WeekRecord{SundayHours: 6, IsVacationWeek: true, Comment: "atostogos"}
	if err := repo.UpsertWeek(ctx, k, r2); err != nil {
		t.Fatalf("overwrite upsert: %v", err)
	}
	got, err = repo.LoadWeek(ctx, k)
	if err != nil || got == nil {
		t.Fatalf("load after overwrite: %+v err=%v", got, err)
	}
	if *got != r2 {
		t.Fatalf("overwrite incomplete: got %+v want %+v", *got, r2)
	}

	// Still exactly one row for the key.
	year, err := repo.LoadYear(ctx, 2024)
	if err != nil {
		t.Fatalf("load year: %v", err)
	}
	if len(year) != 1 {
		t.Fatalf("expected one row for the key, got %d", len(year))
	}
}

func TestLoadWeekMissIsNotAnError(t *testing.T) {
	repo := newTestRepo(t)
	rec, err := repo.LoadWeek(context.Background(), key(t, "2030-01-05"))
	if err != nil {
		t.Fatalf("miss returned error: %v", err)
	}
	if rec != nil {
		t.Fatalf("miss returned a record: %+v", rec)
	}
}

func TestLoadYearAttribution(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Week starting in 2024 but ending in 2025 belongs to 2024.
	boundary := key(t, "2024-12-28")
	inside := key(t, "2024-06-01")
	next := key(t, "2025-01-04")

	for _, k := range []core.WeekKey{boundary, inside, next} {
		if err := repo.UpsertWeek(ctx, k, core.WeekRecord{DaysWorked: 1}); err != nil {
			t.Fatalf("upsert %s: %v", k, err)
		}
	}

	y2024, err := repo.LoadYear(ctx, 2024)
	if err != nil {
		t.Fatalf("load 2024: %v", err)
	}
	if len(y2024) != 2 {
		t.Fatalf("2024 rows = %d, want 2", len(y2024))
	}
	if _, ok := y2024[boundary]; !ok {
		t.Fatalf("2024-12-28 missing from 2024")
	}

	y2025, err := repo.LoadYear(ctx, 2025)
	if err != nil {
		t.Fatalf("load 2025: %v", err)
	}
	if len(y2025) != 1 {
		t.Fatalf("2025 rows = %d, want 1", len(y2025))
	}
	if _, ok := y2025[boundary]; ok {
		t.Fatalf("2024-12-28 leaked into 2025")
	}
}

func TestLoadYearEmpty(t *testing.T) {
	repo := newTestRepo(t)
	rows, err := repo.LoadYear(context.Background(), 1999)
	if err != nil {
		t.Fatalf("load empty year: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}
