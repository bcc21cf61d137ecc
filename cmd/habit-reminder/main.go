package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/smith3v/habit-reminder/pkg/config"
	"github.com/smith3v/habit-reminder/pkg/db"
	"github.com/smith3v/habit-reminder/pkg/logger"
	"github.com/smith3v/habit-reminder/pkg/reminders"
)

func main() {
	if err := config.LoadConfig("config.json"); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := logger.Configure(logger.Options{
		Level: config.AppConfig.Logging.Level,
		File:  config.AppConfig.Logging.File,
	}); err != nil {
		logger.Error("failed to configure logger", "error", err)
	}

	if err := db.InitDB(config.AppConfig.Database); err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	interval := time.Duration(config.AppConfig.Reconcile.IntervalMinutes) * time.Minute

	logger.Info("Starting reminder reconciler...")
	reminders.StartReconcileLoop(ctx, interval)
}
