package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"workjournal/internal/amqp"
	"workjournal/internal/cli"
	"workjournal/internal/export"
	"workjournal/internal/services"
	"workjournal/internal/sheets"
	gsheet "workjournal/internal/sheets/google"
	"workjournal/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting export-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}
	if cfg.ExportDir == "" {
		logger.Error("EXPORT_DIR is required for the export worker")
		os.Exit(1)
	}

	repo := cli.InitRepository(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	queue, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer queue.Close()

	var mirror sheets.ReportWriter
	if cfg.SheetsMirror {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	sink := export.NewFileSink(export.StaticFolder(cfg.ExportDir))
	service := services.NewJournalService(repo, nil, sink, mirror, nil)
	exportWorker := worker.NewExportWorker(service)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return queue.ConsumeExportRequests(gctx, func(msg *amqp.ExportRequest) error {
			return exportWorker.HandleExportRequest(gctx, msg)
		})
	})

	g.Go(func() error {
		return exportWorker.RunPeriodic(gctx, cfg.ExportInterval)
	})

	logger.Info("Export worker running",
		"queue", cfg.AMQPQueue,
		"export_dir", cfg.ExportDir,
		"interval", cfg.ExportInterval)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Export worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Export worker stopped gracefully")
}
