package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"workjournal/internal/amqp"
	"workjournal/internal/services"
)

// ExportWorker regenerates yearly spreadsheets in response to export
// requests from AMQP, so saves in the app stay fast and the workbook is
// rebuilt out of band.
type ExportWorker struct {
	service *services.JournalService
}

func NewExportWorker(service *services.JournalService) *ExportWorker {
	return &ExportWorker{service: service}
}

// HandleExportRequest processes a single export request message.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequest) error {
	slog.InfoContext(ctx, "Processing export request",
		"year", msg.Year,
		"requested_at", msg.RequestedAt.Format(time.RFC3339))

	path, err := w.service.ExportYear(ctx, msg.Year)
	if err != nil {
		return fmt.Errorf("export year %d: %w", msg.Year, err)
	}

	slog.InfoContext(ctx, "Export request completed", "year", msg.Year, "path", path)
	return nil
}

// RunPeriodic re-exports the current year on a fixed interval until the
// context is cancelled. It covers edits that never reached the queue.
func (w *ExportWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			year := time.Now().UTC().Year()
			if _, err := w.service.ExportYear(ctx, year); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed",
					"year", year, "error", err)
				continue
			}
			slog.InfoContext(ctx, "Periodic export completed", "year", year)
		}
	}
}
