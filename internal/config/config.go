// Package config loads server configuration from TOML files.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the fleetctl serve settings.
type Config struct {
	ListenAddr      string
	StorageDriver   string
	SQLitePath      string
	PostgresDSN     string
	BlobDriver      string
	BlobFSRoot      string
	MetricsBackend  string
	TraceLogPath    string
	SeedSampleData  bool
	ShutdownTimeout time.Duration
}

type fileConfig struct {
	ListenAddr      string `toml:"listen_addr"`
	StorageDriver   string `toml:"storage_driver"`
	SQLitePath      string `toml:"sqlite_path"`
	PostgresDSN     string `toml:"postgres_dsn"`
	BlobDriver      string `toml:"blob_driver"`
	BlobFSRoot      string `toml:"blob_fs_root"`
	MetricsBackend  string `toml:"metrics_backend"`
	TraceLog        string `toml:"trace_log"`
	SeedSampleData  bool   `toml:"seed_sample_data"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ListenAddr:      ":8080",
		StorageDriver:   "sqlite",
		BlobDriver:      "fs",
		MetricsBackend:  "prometheus",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads a TOML config file, applying defaults for absent keys. An empty
// path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("listen_addr") {
		if addr := strings.TrimSpace(raw.ListenAddr); addr != "" {
			cfg.ListenAddr = addr
		}
	}
	if meta.IsDefined("storage_driver") {
		cfg.StorageDriver = strings.TrimSpace(raw.StorageDriver)
	}
	if meta.IsDefined("sqlite_path") {
		cfg.SQLitePath = strings.TrimSpace(raw.SQLitePath)
	}
	if meta.IsDefined("postgres_dsn") {
		cfg.PostgresDSN = strings.TrimSpace(raw.PostgresDSN)
	}
	if meta.IsDefined("blob_driver") {
		cfg.BlobDriver = strings.TrimSpace(raw.BlobDriver)
	}
	if meta.IsDefined("blob_fs_root") {
		cfg.BlobFSRoot = strings.TrimSpace(raw.BlobFSRoot)
	}
	if meta.IsDefined("metrics_backend") {
		cfg.MetricsBackend = strings.TrimSpace(raw.MetricsBackend)
	}
	if meta.IsDefined("trace_log") {
		cfg.TraceLogPath = strings.TrimSpace(raw.TraceLog)
	}
	if meta.IsDefined("seed_sample_data") {
		cfg.SeedSampleData = raw.SeedSampleData
	}
	if meta.IsDefined("shutdown_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ShutdownTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse shutdown_timeout: %w", err)
		}
		cfg.ShutdownTimeout = d
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown drivers and empty listen addresses.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("config missing listen_addr")
	}
	switch cfg.StorageDriver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage_driver %q", cfg.StorageDriver)
	}
	switch cfg.BlobDriver {
	case "fs", "s3", "memory":
	default:
		return fmt.Errorf("unknown blob_driver %q", cfg.BlobDriver)
	}
	switch cfg.MetricsBackend {
	case "prometheus", "expvar":
	default:
		return fmt.Errorf("unknown metrics_backend %q", cfg.MetricsBackend)
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}
	return nil
}
