package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"fleetcore/internal/adapters/exports"
	"fleetcore/internal/adapters/httpapi"
	"fleetcore/internal/blob"
	"fleetcore/internal/config"
	"fleetcore/internal/core"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the fleet registry HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(serveConfigPath)
		if err != nil {
			return err
		}
		return runServer(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "path to TOML config file")
	rootCmd.AddCommand(serveCmd)
}

// applyEnv maps file configuration onto the environment variables consumed by
// the storage and blob factories so flags and config share one code path.
func applyEnv(cfg config.Config) {
	os.Setenv("FLEETCORE_STORAGE_DRIVER", cfg.StorageDriver)
	if cfg.SQLitePath != "" {
		os.Setenv("FLEETCORE_SQLITE_PATH", cfg.SQLitePath)
	}
	if cfg.PostgresDSN != "" {
		os.Setenv("FLEETCORE_POSTGRES_DSN", cfg.PostgresDSN)
	}
	os.Setenv("FLEETCORE_BLOB_DRIVER", cfg.BlobDriver)
	if cfg.BlobFSRoot != "" {
		os.Setenv("FLEETCORE_BLOB_FS_ROOT", cfg.BlobFSRoot)
	}
}

func runServer(ctx context.Context, cfg config.Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	applyEnv(cfg)
	if flagDriver != "" {
		os.Setenv("FLEETCORE_STORAGE_DRIVER", flagDriver)
	}

	store, err := core.OpenPersistentStore(core.DefaultRulesEngine())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	opts := []core.Option{core.WithLogger(core.SlogLogger{L: logger})}

	var metricsHandler http.Handler
	switch cfg.MetricsBackend {
	case "expvar":
		opts = append(opts, core.WithMetrics(core.NewExpvarMetricsRecorder("fleet_registry")))
		metricsHandler = expvar.Handler()
	default:
		registry := prometheus.NewRegistry()
		recorder, err := core.NewPrometheusMetricsRecorder(registry)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, core.WithMetrics(recorder))
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	if cfg.TraceLogPath != "" {
		traceFile, err := os.OpenFile(cfg.TraceLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open trace log: %w", err)
		}
		defer traceFile.Close()
		opts = append(opts, core.WithTracer(core.NewTraceLog(traceFile)))
	}

	svc := core.NewService(store, opts...)

	if cfg.SeedSampleData {
		if ships, ports, _, err := svc.LoadSampleRegistry(ctx); err != nil {
			logger.Warn("sample data not loaded", "error", err)
		} else {
			logger.Info("sample data loaded", "ships", ships, "ports", ports)
		}
	}

	blobStore, err := blob.Open(ctx)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	worker := exports.NewWorker(svc, blobStore, nil)
	worker.Start()

	handler := httpapi.NewHandler(svc)
	handler.Exports = worker

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", handler)
	mux.Handle("/metrics", metricsHandler)

	server := &http.Server{Addr: cfg.ListenAddr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving fleet registry", "addr", cfg.ListenAddr,
			"storage", cfg.StorageDriver, "blob", cfg.BlobDriver, "metrics", cfg.MetricsBackend)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stop:
		logger.Info("shutting down")
	case <-ctx.Done():
		logger.Info("shutting down", "reason", ctx.Err())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if err := worker.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("stop export worker: %w", err)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("close store", "error", err)
		}
	}
	return nil
}
