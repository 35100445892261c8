// Command scheduler runs the collectors on their cron schedules and serves the ops API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forum-harvest/api/router"
	"forum-harvest/app"
	"forum-harvest/config"
	"forum-harvest/logger"
	"forum-harvest/scheduler"
	"forum-harvest/services"
)

// @title                       Forum Harvest Ops API
// @version                     1.0
// @description                 Starts collector runs and reports their last results.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load("")
	if err != nil {
		logger.Log.Errorf("failed to load config: %v", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		logger.Log.Errorf("failed to initialize sink: %v", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	runs := services.NewRunService(ctx, a.Collectors()...)

	sched, err := scheduler.New(ctx, runs, a.Schedules())
	if err != nil {
		logger.Log.Errorf("failed to configure schedule: %v", err)
		os.Exit(1)
	}
	sched.Start()
	if cfg.Schedule.RunAtStartup {
		go sched.RunNow()
	}

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router.New(runs, cfg.Server.APIToken)}
	go func() {
		logger.Log.Infof("ops API listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorf("ops API stopped: %v", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
		logger.Log.Info("received shutdown signal, shutting down scheduler...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("ops API shutdown: %v", err)
	}
	// Cancel first: Stop waits for an in-flight scheduled job, which only
	// returns once its context is done.
	cancel()
	sched.Stop()
	runs.Wait()

	logger.Log.Info("scheduler stopped")
}
