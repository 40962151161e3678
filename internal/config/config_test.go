package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_FileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
server:
  addr: ":9090"
scheduler:
  interval: 45s
postgres:
  host: db
coingecko:
  base_url: http://gecko.local/api/v3
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr: got %q", cfg.Server.Addr)
	}
	if cfg.Scheduler.Interval != 45*time.Second {
		t.Errorf("interval: got %v", cfg.Scheduler.Interval)
	}
	if !cfg.Scheduler.Enabled {
		t.Errorf("scheduler must be enabled by default")
	}
	if cfg.Postgres.Host != "db" || cfg.Postgres.Port != 5432 {
		t.Errorf("postgres: got %s:%d", cfg.Postgres.Host, cfg.Postgres.Port)
	}
	if cfg.CoinGecko.BaseURL != "http://gecko.local/api/v3" {
		t.Errorf("base url: got %q", cfg.CoinGecko.BaseURL)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("env override for log level not applied: %q", cfg.Logger.Level)
	}
	if cfg.Telegram.Enabled || cfg.Redis.Enabled {
		t.Errorf("optional integrations must be disabled by default")
	}
}

func TestLoad_EnvOnlyDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Scheduler.Interval != 30*time.Second {
		t.Errorf("default interval: got %v", cfg.Scheduler.Interval)
	}
	if cfg.Redis.TTL != 30*time.Second {
		t.Errorf("default redis ttl: got %v", cfg.Redis.TTL)
	}
}
