package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nkmathur/partsrecon/internal/async"
	"github.com/nkmathur/partsrecon/internal/common"
	"github.com/nkmathur/partsrecon/internal/docread"
	"github.com/nkmathur/partsrecon/internal/export"
	"github.com/nkmathur/partsrecon/internal/extract"
	"github.com/nkmathur/partsrecon/internal/pipeline"
	"github.com/nkmathur/partsrecon/internal/reconcile"
	"github.com/nkmathur/partsrecon/internal/runs"
	"github.com/nkmathur/partsrecon/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	logger := newLogger(os.Getenv("LOG_LEVEL"))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	profile := extract.DefaultProfile()
	if cfg.Compare.ProfilePath != "" {
		p, err := extract.LoadProfile(cfg.Compare.ProfilePath)
		if err != nil {
			logger.Error("loading layout profile", "path", cfg.Compare.ProfilePath, "error", err)
			os.Exit(1)
		}
		profile = p
		logger.Info("layout profile loaded", "path", cfg.Compare.ProfilePath)
	}

	reader := docread.NewReader(docread.Config{}, logger)
	extractor := extract.NewExtractor(profile, logger)
	engine := reconcile.NewEngine()
	comparator := pipeline.NewComparator(logger, reader, extractor, engine)
	store := runs.NewStore(cfg.Server.RunTTL)
	queue := async.NewCompareQueue(comparator, store, logger,
		async.WithWorkers(cfg.Server.Workers),
		async.WithQueueSize(cfg.Server.QueueSize),
		async.WithJobTimeout(cfg.Server.CompareTimeout),
	)
	exporter := export.NewService(cfg.Export.CurrencySymbol, logger)

	srv := server.NewServer(cfg.Server, logger, comparator, queue, store, exporter)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Routes(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}

func newLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
