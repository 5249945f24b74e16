package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workjournal/internal/amqp"
	"workjournal/internal/cli"
	"workjournal/internal/export"
	apphttp "workjournal/internal/http"
	"workjournal/internal/notify"
	"workjournal/internal/services"
	"workjournal/internal/sheets"
	gsheet "workjournal/internal/sheets/google"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting workjournal server")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitRepository(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Without EXPORT_DIR, exports wait for a folder granted over the API.
	var (
		grant *export.SessionGrant
		sink  *export.FileSink
	)
	if cfg.ExportDir != "" {
		sink = export.NewFileSink(export.StaticFolder(cfg.ExportDir))
		logger.Info("Export folder fixed", "dir", cfg.ExportDir)
	} else {
		grant = &export.SessionGrant{}
		sink = export.NewFileSink(grant)
		logger.Info("Export folder granted per session")
	}

	// AMQP is optional; without it exports run inline in the request.
	var queue *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, exports run inline", "error", err)
		} else {
			queue = client
			defer queue.Close()
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - exports run inline")
	}

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

	title := notify.NewTitle()
	unsubscribe := title.Subscribe(func(value string) {
		logger.Info("Title changed", "title", value)
	})
	defer unsubscribe()

	service := services.NewJournalService(repo, queue, sink, mirror, title)

	srv := apphttp.NewServer(":"+cfg.Port, service, queue, grant, title)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting workjournal server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
