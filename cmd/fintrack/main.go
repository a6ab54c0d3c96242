package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Stdout, os.Getenv("LOG_LEVEL"), log.ComponentApp)

	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	factory := backend.NewFactory(logger.Logger)

	store, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize record backend", err)
	}
	defer func() {
		if store.Cleanup != nil {
			if err := store.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}
	}()

	calc, err := factory.CreateCalcCache(ctx, bcfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize calculator cache", err)
	}
	if calc.Cleanup != nil {
		defer calc.Cleanup()
	}

	// Schedule export is optional; without a spreadsheet the endpoint answers 503.
	var exporter sheets.ScheduleExporter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			RemindersSheet:  cfg.GoogleSheetName,
			SchedulePrefix:  cfg.GoogleScheduleSheetPrefix,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
			Logger:          logger,
		})
		if err != nil {
			cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
		}
		exporter = client
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Records:            services.NewRecordService(store.Store, exporter, logger.WithComponent(log.ComponentStorage)),
		Dashboard:          services.NewDashboardService(store.Store),
		CalcCache:          calc.Cache,
		Ready:              store.Ping,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger.WithComponent(log.ComponentHTTP),
	})

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	}()

	logger.Info("Starting fintrack server",
		"port", cfg.Port,
		"backend", bcfg.Type,
		"cache", bcfg.Cache,
		"sheets_export", exporter != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
