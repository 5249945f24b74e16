package services

import (
	"context"
	"fmt"
	"log/slog"

	"workjournal/internal/amqp"
	"workjournal/internal/calendar"
	"workjournal/internal/core"
	"workjournal/internal/export"
	"workjournal/internal/notify"
	"workjournal/internal/report"
	"workjournal/internal/sheets"
	"workjournal/internal/storage"
)

// JournalService orchestrates week persistence and yearly export across
// the repository, the export sink, and the optional queue and Sheets
// mirror. Optional collaborators may be nil.
type JournalService struct {
	repo   *storage.Repository
	queue  *amqp.Client
	sink   *export.FileSink
	mirror sheets.ReportWriter
	title  *notify.Title
}

func NewJournalService(repo *storage.Repository, queue *amqp.Client, sink *export.FileSink, mirror sheets.ReportWriter, title *notify.Title) *JournalService {
	return &JournalService{
		repo:   repo,
		queue:  queue,
		sink:   sink,
		mirror: mirror,
		title:  title,
	}
}

// SaveWeek validates and upserts one week, then asks the worker to
// refresh that year's report. The save itself never fails because the
// queue is down.
func (s *JournalService) SaveWeek(ctx context.Context, key core.WeekKey, rec core.WeekRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid week record: %w", err)
	}

	key = core.NewWeekKey(key.Time)
	if err := s.repo.UpsertWeek(ctx, key, rec); err != nil {
		return fmt.Errorf("save week: %w", err)
	}

	if err := s.publishExportRequest(ctx, key.Year()); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export request",
			"year", key.Year(), "error", err)
		// Week is saved locally either way.
	}

	if s.title != nil {
		s.title.Set("Savaitė " + key.String())
	}

	return nil
}

// LoadWeek returns the record for the week containing the key date, or
// nil when the week was never entered.
func (s *JournalService) LoadWeek(ctx context.Context, key core.WeekKey) (*core.WeekRecord, error) {
	return s.repo.LoadWeek(ctx, core.NewWeekKey(key.Time))
}

func (s *JournalService) LoadYear(ctx context.Context, year int) (map[core.WeekKey]core.WeekRecord, error) {
	return s.repo.LoadYear(ctx, year)
}

// ExportYear regenerates the year's spreadsheet: load every stored week,
// build the grid, render, then commit to the sink. The sink is opened
// only after the full row set is in memory and the workbook is rendered,
// so a failed or cancelled export never leaves a file behind. Returns the
// committed path.
func (s *JournalService) ExportYear(ctx context.Context, year int) (string, error) {
	records, err := s.repo.LoadYear(ctx, year)
	if err != nil {
		return "", fmt.Errorf("load year %d: %w", year, err)
	}

	blocks := calendar.Build(year, records)
	file, err := report.Render(year, blocks)
	if err != nil {
		return "", fmt.Errorf("render year %d: %w", year, err)
	}
	defer file.Close()

	// Cancellation checkpoint: past this point the destination exists.
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("export cancelled: %w", err)
	}

	dst, err := s.sink.OpenDestination(ctx, year)
	if err != nil {
		return "", fmt.Errorf("open export destination: %w", err)
	}
	if err := file.Write(dst); err != nil {
		dst.Discard()
		return "", fmt.Errorf("write workbook: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("commit export: %w", err)
	}

	slog.InfoContext(ctx, "Year exported", "year", year, "path", dst.Name())

	if s.mirror != nil {
		if err := s.mirrorReport(ctx, year, blocks); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror report",
				"year", year, "error", err)
			// The local file is committed; the mirror is best effort.
		}
	}

	return dst.Name(), nil
}

func (s *JournalService) mirrorReport(ctx context.Context, year int, blocks []calendar.MonthBlock) error {
	rows, err := report.Rows(blocks)
	if err != nil {
		return fmt.Errorf("flatten report: %w", err)
	}
	return s.mirror.WriteReport(ctx, year, rows)
}

func (s *JournalService) publishExportRequest(ctx context.Context, year int) error {
	if s.queue == nil {
		slog.DebugContext(ctx, "Queue not available, skipping export request")
		return nil
	}
	return s.queue.PublishExportRequest(ctx, year)
}

// Close closes the repository and queue connections.
func (s *JournalService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.queue != nil {
		if err := s.queue.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close journal service: %v", errs)
	}
	return nil
}
