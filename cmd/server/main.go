package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/quantumwork/api"
	"github.com/garnizeh/quantumwork/internal/app"
	"github.com/garnizeh/quantumwork/internal/config"
	"github.com/garnizeh/quantumwork/internal/pipeline"
	"github.com/garnizeh/quantumwork/internal/repository/sqlite"
	"github.com/garnizeh/quantumwork/internal/scheduler"
	"github.com/garnizeh/quantumwork/internal/tasks"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	level := slog.LevelInfo
	if config.IsDevelopment() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	logger.Info("starting quantumwork server", "version", version, "build_time", buildTime)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open database connection
	conn, err := app.OpenDB(ctx, cfg, cfg.MigrateOnStart, logger)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	repo := sqlite.New(conn, logger)

	unsub := app.Unsubscriber(cfg, logger)
	notifier := app.Notifier(cfg, unsub, logger)

	// Background tasks
	pool := tasks.NewPool(map[string]tasks.Handler{
		tasks.TypeWelcomeEmail: tasks.WelcomeEmailHandler(notifier),
	}, logger, cfg.Tasks.Workers, cfg.Tasks.QueueSize)
	pool.Start(ctx)

	runner := app.Runner(cfg, repo, notifier, logger)

	var sched *scheduler.Scheduler
	if cfg.Scraper.Schedule != "" {
		sched = scheduler.New(cfg.Scraper.Schedule, func(ctx context.Context) error {
			res, err := runner.Update(ctx, pipeline.UpdateOptions{Notify: cfg.Scraper.Notify})
			if err != nil {
				return err
			}
			logger.Info("scheduled update finished", "saved", res.Saved, "matches", res.Matches, "notified", res.Notified)
			return nil
		}, logger)
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		logger.Info("job update scheduled", "schedule", cfg.Scraper.Schedule)
	}

	handler := api.SetupRoutes(version, buildTime, api.Deps{
		Store:        repo,
		Mailer:       notifier,
		Scraper:      runner,
		Tasks:        pool,
		Unsubscriber: unsub,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	if sched != nil {
		sched.Stop()
	}
	// queued welcome e-mails are delivered before the pool returns
	pool.Stop()
	cancel()

	// Close database connection
	if err := conn.Close(); err != nil {
		logger.Error("error closing DB", "error", err)
	}

	logger.Info("server exited")
}
