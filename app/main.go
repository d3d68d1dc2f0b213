package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsalert/app/alert"
	"newsalert/app/api"
	"newsalert/app/cfg"
	"newsalert/app/database"
	"newsalert/app/ingest"
	"newsalert/app/notifier"
	"newsalert/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help output was requested.
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting News Alert server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName, appCfg.DBSSLMode)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "migration_version", version, "dirty", dirty)

	sourceCache := ingest.NewSourceCache(appCfg.SourcesDir)
	if err := sourceCache.Run(); err != nil {
		slog.Error("Failed to load source configurations", "dir", appCfg.SourcesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Source configurations loaded", "count", sourceCache.GetSourceCount())

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		if err := sourceCache.Watch(watchCtx); err != nil {
			slog.Warn("Source configuration watcher stopped", "error", err)
		}
	}()

	articleRepo := database.NewArticleRepository(db)
	filterRepo := database.NewFilterRepository(db)
	alertRepo := database.NewAlertRepository(db)
	dispatchRepo := database.NewDispatchRepository(db)

	newsClient := ingest.NewNewsAPIClient(appCfg.NewsAPIKey, appCfg.NewsAPIURL,
		appCfg.UserAgent, appCfg.AllowSampleData)
	rssFetcher := ingest.NewRSSFetcher(appCfg.UserAgent)
	extractor := ingest.NewContentExtractor(appCfg.UserAgent)

	sender := notifier.NewEmailSender(appCfg.SendGridAPIKey, appCfg.FromEmail,
		appCfg.FromName, appCfg.EmailRatePerSec)

	evaluator := alert.NewEvaluator(articleRepo, filterRepo)
	dispatcher := alert.NewDispatcher(alertRepo, dispatchRepo, sender)
	processor := alert.NewProcessor(alertRepo, evaluator, dispatcher, appCfg.WorkerCount)

	scheduler := tasks.NewScheduler(sourceCache, newsClient, rssFetcher, extractor,
		articleRepo, processor)
	if err := scheduler.Start(); err != nil {
		slog.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount,
		"fetch_schedule", appCfg.FetchSchedule, "process_schedule", appCfg.ProcessSchedule)

	lookback := time.Duration(appCfg.LookbackHours) * time.Hour
	apiHandler := api.NewHandler(articleRepo, filterRepo, alertRepo, dispatchRepo,
		dispatcher, processor, sourceCache, newsClient, rssFetcher, extractor,
		scheduler, lookback)
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
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
