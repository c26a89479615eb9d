package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fleetctl.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":8080" || cfg.StorageDriver != "sqlite" || cfg.BlobDriver != "fs" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected shutdown timeout %v", cfg.ShutdownTimeout)
	}
	if cfg.MetricsBackend != "prometheus" || cfg.TraceLogPath != "" {
		t.Fatalf("unexpected observability defaults %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
listen_addr = "127.0.0.1:9090"
storage_driver = "memory"
blob_driver = "memory"
seed_sample_data = true
shutdown_timeout = "30s"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9090" {
		t.Fatalf("unexpected addr %q", cfg.ListenAddr)
	}
	if cfg.StorageDriver != "memory" || cfg.BlobDriver != "memory" {
		t.Fatalf("unexpected drivers %+v", cfg)
	}
	if !cfg.SeedSampleData {
		t.Fatalf("expected seed_sample_data true")
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Fatalf("unexpected shutdown timeout %v", cfg.ShutdownTimeout)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `storage_driver = "postgres"
postgres_dsn = "postgres://localhost/fleet"`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("default listen_addr lost: %q", cfg.ListenAddr)
	}
	if cfg.StorageDriver != "postgres" || cfg.PostgresDSN != "postgres://localhost/fleet" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadObservabilityOverrides(t *testing.T) {
	path := writeConfig(t, `
metrics_backend = "expvar"
trace_log = "/var/log/fleetcore/trace.jsonl"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MetricsBackend != "expvar" {
		t.Fatalf("unexpected metrics backend %q", cfg.MetricsBackend)
	}
	if cfg.TraceLogPath != "/var/log/fleetcore/trace.jsonl" {
		t.Fatalf("unexpected trace log %q", cfg.TraceLogPath)
	}
}

func TestLoadRejectsUnknownMetricsBackend(t *testing.T) {
	path := writeConfig(t, `metrics_backend = "statsd"`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown metrics backend")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `storage_driver = "etcd"`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown storage driver")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `shutdown_timeout = "soon"`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
