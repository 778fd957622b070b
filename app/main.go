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

	"github.com/lysyi3m/jsonfeed-views/app/api"
	"github.com/lysyi3m/jsonfeed-views/app/cfg"
	"github.com/lysyi3m/jsonfeed-views/app/database"
	"github.com/lysyi3m/jsonfeed-views/app/site"
	"github.com/lysyi3m/jsonfeed-views/app/source"
	"github.com/lysyi3m/jsonfeed-views/app/tasks"
	"github.com/lysyi3m/jsonfeed-views/app/views"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	appCfg, err := cfg.Load()
	if err != nil {
		return err
	}
	if appCfg == nil {
		return nil
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting JSON Feed Views", "version", appCfg.Version, "timezone", time.Local.String())

	urls, err := site.NewURLs(appCfg.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid BASE_URL: %w", err)
	}

	siteInfo, err := site.New(site.Info{
		Name:      appCfg.SiteName,
		Slogan:    appCfg.SiteSlogan,
		FrontPage: appCfg.SiteFrontPage,
		Favicon:   appCfg.SiteFavicon,
	}, urls)
	if err != nil {
		return err
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	viewCache := views.NewCache(appCfg.ViewsDir, siteInfo)
	if err := viewCache.Run(); err != nil {
		return fmt.Errorf("failed to load views: %w", err)
	}
	slog.Info("Views loaded", "dir", appCfg.ViewsDir, "count", viewCache.GetViewCount(), "invalid", len(viewCache.GetProblems()))

	sourceCache := source.NewCache(appCfg.SourcesDir)
	if err := sourceCache.Run(); err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}
	slog.Info("Sources loaded", "dir", appCfg.SourcesDir, "count", sourceCache.GetConfigCount())

	nodeRepo := database.NewNodeRepository(db)
	sourceRepo := database.NewSourceRepository(db)

	importer := &tasks.Importer{
		Fetcher:    tasks.NewFetcher(&http.Client{Timeout: 60 * time.Second}, appCfg.UserAgent),
		Parser:     source.NewParser(),
		Filterer:   source.NewFilterer(),
		Extractor:  source.NewContentExtractor(),
		NodeRepo:   nodeRepo,
		SourceRepo: sourceRepo,
	}

	scheduler := tasks.NewScheduler(sourceCache, sourceRepo, importer, tasks.SchedulerOptions{
		Interval:    appCfg.SchedulerDuration(),
		WorkerCount: appCfg.WorkerCount,
	})
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(viewCache, views.NewExecutor(database.NewRowSource(db)), urls, siteInfo,
		sourceCache, sourceRepo, nodeRepo, scheduler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port, "base_url", urls.BaseURL())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErr:
		return fmt.Errorf("HTTP server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
	return nil
}
