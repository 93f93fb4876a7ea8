package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/skyline-analytics/adgap/internal/api"
	"github.com/skyline-analytics/adgap/internal/classify"
	"github.com/skyline-analytics/adgap/internal/config"
	"github.com/skyline-analytics/adgap/internal/notify"
	"github.com/skyline-analytics/adgap/internal/pipeline"
	"github.com/skyline-analytics/adgap/internal/report"
	"github.com/skyline-analytics/adgap/internal/session"
	"github.com/skyline-analytics/adgap/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("adgap starting", "providers", cfg.Providers, "data", cfg.DataPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database (optional)
	var db *store.Store
	if cfg.DatabaseURL != "" {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database connected")
	} else {
		slog.Warn("no DATABASE_URL — running without run persistence")
	}

	// NATS (optional)
	var publisher *notify.Publisher
	if cfg.NatsURL != "" {
		var err error
		publisher, err = notify.NewPublisher(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("no NATS_URL — running without event publishing")
	}

	records, err := session.Load(cfg.DataPath, cfg.ApplicationColumn)
	if err != nil {
		slog.Error("failed to load session data", "error", err)
		os.Exit(1)
	}
	slog.Info("session data loaded", "records", len(records))

	srv := api.NewServer(cfg.Port)
	writer := report.NewWriter(cfg.OutputDir)
	params := classify.Params{
		AdThreshold:          cfg.AdThreshold,
		AdFrequencyThreshold: cfg.AdFreqThreshold,
	}

	// Provider runs are independent, so they go through an errgroup.
	// One malformed timestamp fails the whole batch.
	g, gctx := errgroup.WithContext(ctx)
	for _, provider := range cfg.Providers {
		provider := provider
		g.Go(func() error {
			return analyzeProvider(gctx, provider, records, params, writer, db, publisher, srv)
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("analysis failed", "error", err)
		os.Exit(1)
	}
	slog.Info("analysis complete", "providers", len(cfg.Providers), "output", cfg.OutputDir)

	if !cfg.Serve {
		return
	}

	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	slog.Info("adgap ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("adgap stopped")
}

func analyzeProvider(
	ctx context.Context,
	provider string,
	records []session.Record,
	params classify.Params,
	writer *report.Writer,
	db *store.Store,
	publisher *notify.Publisher,
	srv *api.Server,
) error {
	logger := slog.Default().With("provider", provider)
	logger.Info("analyzing provider")

	res, err := pipeline.Run(records, provider, params, logger)
	if err != nil {
		return err
	}

	if err := writer.WriteAll(res); err != nil {
		return err
	}

	run := store.Run{
		ID:         uuid.New(),
		Provider:   provider,
		Sessions:   len(res.Sessions),
		Devices:    len(res.Verdicts),
		FinishedAt: time.Now().UTC(),
	}
	if db != nil {
		if err := db.SaveRun(ctx, run, res.Verdicts); err != nil {
			return err
		}
	}

	if publisher != nil {
		evt := notify.RunCompletedEvent{
			RunID:         run.ID.String(),
			Provider:      provider,
			Sessions:      run.Sessions,
			Devices:       run.Devices,
			VerdictCounts: res.VerdictCounts(),
			FinishedAt:    run.FinishedAt.Format(time.RFC3339),
		}
		if err := publisher.RunCompleted(evt); err != nil {
			logger.Warn("failed to publish run event", "error", err)
		}
	}

	srv.Record(res)
	logger.Info("provider analyzed",
		"sessions", len(res.Sessions),
		"devices", len(res.Verdicts),
		"verdicts", res.VerdictCounts(),
	)
	return nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
