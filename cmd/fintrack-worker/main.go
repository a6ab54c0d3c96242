package main

import (
	"context"
	"errors"
	"os"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Stdout, os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	logger.Info("Starting fintrack-worker")

	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}
	if cfg.AMQPURL == "" {
		cli.Fatal(logger, "Cannot consume reminders", errors.New("AMQP_URL is not set"))
	}
	if cfg.GoogleSpreadsheetID == "" {
		cli.Fatal(logger, "Cannot write reminders", errors.New("GOOGLE_SPREADSHEET_ID is not set"))
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	sheetsClient, err := gsheet.New(ctx, gsheet.Config{
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
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer amqpClient.Close()

	reminderWorker := worker.NewReminderWorker(sheetsClient)

	// ConsumeReminders reconnects on its own and only returns once ctx is done.
	err = amqpClient.ConsumeReminders(ctx, reminderWorker.HandleReminderMessage)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Fintrack-worker shutdown complete")
}
