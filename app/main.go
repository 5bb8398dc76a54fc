package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tweetbase/app/api"
	"tweetbase/app/cfg"
	"tweetbase/app/database"
	"tweetbase/app/ingest"
	"tweetbase/app/logging"
	"tweetbase/app/notify"
	"tweetbase/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logging.Setup(appCfg.Debug)

	slog.Info("Starting Tweetbase server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	schemaVersion, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	if dirty {
		slog.Warn("Database schema is dirty", "schema_version", schemaVersion)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", schemaVersion)

	sourceCache := ingest.NewSourceCache(appCfg.SourcesDir)
	if err := sourceCache.Run(); err != nil {
		slog.Error("Failed to load source definitions", "dir", appCfg.SourcesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Source definitions loaded", "dir", appCfg.SourcesDir, "count", sourceCache.GetConfigCount())

	repos := database.NewRepos(db)
	pipeline := ingest.NewPipeline(database.NewUnitOfWork(db))
	fetcher := ingest.NewFeedSource(&http.Client{}, appCfg.UserAgent)

	var notifier tasks.Notifier
	if appCfg.WebhookURL != "" {
		notifier = notify.NewWebhookClient(appCfg.WebhookURL)
		slog.Info("Webhook notifications enabled")
	}

	scheduler := tasks.NewScheduler(sourceCache, repos.DataSources, repos.ScraperTasks,
		repos.RawData, pipeline, fetcher, notifier)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)

	apiHandler := api.NewHandler(repos, pipeline, fetcher, sourceCache, scheduler, notifier)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Tweetbase server started")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
