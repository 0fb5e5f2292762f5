package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jobpulse/jobpulse/server/internal/analytics"
	"github.com/jobpulse/jobpulse/server/internal/api"
	"github.com/jobpulse/jobpulse/server/internal/config"
	"github.com/jobpulse/jobpulse/server/internal/dataset"
	"github.com/jobpulse/jobpulse/server/internal/logging"
	"github.com/jobpulse/jobpulse/server/internal/metrics"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to config file; built-in defaults when empty or when the default file is absent")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("jobpulse-server starting", "config", *configPath)

	explicit := false
	flag.Visit(func(f *flag.Flag) { explicit = explicit || f.Name == "config" })

	cfg, err := loadConfig(*configPath, explicit)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger, _ = logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"dataset", cfg.Dataset.Path,
		"watch", cfg.Dataset.Watch,
		"compress", cfg.Server.Compress,
	)

	// The dataset is required: without it there is nothing to serve.
	tbl, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		slog.Error("failed to load dataset", "path", cfg.Dataset.Path, "err", err)
		os.Exit(1)
	}
	slog.Info("dataset loaded",
		"rows", tbl.Len(),
		"columns", tbl.Columns(),
		"fingerprint", tbl.Fingerprint,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st := dataset.NewStore(tbl)
	reg := metrics.New()
	reg.SetDataset(tbl.Len())

	if cfg.Dataset.Watch {
		go func() {
			err := dataset.Watch(ctx, cfg.Dataset.Path,
				func(t *dataset.Table) {
					reg.ObserveReload(true)
					if st.Replace(t) {
						reg.SetDataset(t.Len())
						slog.Info("dataset swapped", "rows", t.Len(), "fingerprint", t.Fingerprint)
					}
				},
				func(error) { reg.ObserveReload(false) },
			)
			if err != nil {
				slog.Error("dataset watcher stopped", "err", err)
			}
		}()
	}

	var handler http.Handler = api.New(analytics.NewEngine(st), reg)
	if cfg.Server.Compress {
		handler, err = api.Compress(handler)
		if err != nil {
			slog.Error("failed to enable compression", "err", err)
			os.Exit(1)
		}
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("jobpulse-server shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown incomplete", "err", err)
	}
}

const defaultConfigPath = "config.yaml"

// loadConfig reads the config at path. An empty path, or the default path
// when it does not exist and was not set explicitly, yields config.Default.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", path)
		return config.Default(), nil
	}
	return cfg, err
}
