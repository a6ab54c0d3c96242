package main

import (
	"context"
	"os"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Stdout, os.Getenv("LOG_LEVEL"), log.ComponentReminder)
	logger.Info("Starting reminder-worker")

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
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize record backend", err)
	}
	defer func() {
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}
	}()

	if res.Publisher == nil {
		logger.Info("AMQP disabled - reminders are stored but not published")
	}

	processor := services.NewReminderProcessor(res.Store, res.Publisher, cfg.ReminderLeadDays)
	scheduler := worker.NewScheduler(processor, cfg.ReminderInterval, time.Now)

	logger.Info("Reminder scan configured",
		"interval", cfg.ReminderInterval,
		"lead_days", cfg.ReminderLeadDays,
		"backend", bcfg.Type)

	if err := scheduler.Start(ctx); err != nil {
		cli.Fatal(logger, "Failed to start reminder scheduler", err)
	}

	<-ctx.Done()
	logger.Info("Shutting down reminder-worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("Scheduler did not stop cleanly", log.FieldError, err)
	}
	logger.Info("Reminder-worker shutdown complete")
}
