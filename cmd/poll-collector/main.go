// Command poll-collector collects forum posts through the scraping service's snapshot API
// and appends recent posts to the configured sheet.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"forum-harvest/app"
	"forum-harvest/config"
	"forum-harvest/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load("")
	if err != nil {
		logger.Log.Errorf("failed to load config: %v", err)
		return 1
	}
	logger.Init(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Log.Errorf("failed to initialize sink: %v", err)
		return 1
	}
	defer a.Close(context.Background())

	if _, err := a.PollingCollector().Run(ctx); err != nil {
		return 1
	}
	a.LogDryRun()
	return 0
}
