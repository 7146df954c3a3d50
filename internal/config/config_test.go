package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
service:
  port: 9000
  debug: true
database:
  host: "db.internal"
  port: 5433
  user: "tracker"
  password: "secret"
  database: "tracker_test"
auth:
  admin_secret: "admin-secret"
  bot_tokens:
    - "alpha_t1"
    - "beta_t2"
rate_limit:
  max_per_window: 10
  window: 5m
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.Service.Port != 9000 {
		t.Errorf("cfg.Service.Port = %d, want 9000", cfg.Service.Port)
	}
	if !cfg.Service.Debug {
		t.Error("cfg.Service.Debug = false, want true")
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("cfg.Database.Host = %q, want db.internal", cfg.Database.Host)
	}
	if len(cfg.Auth.BotTokens) != 2 {
		t.Fatalf("cfg.Auth.BotTokens = %v, want 2 tokens", cfg.Auth.BotTokens)
	}
	if cfg.RateLimit.MaxPerWindow != 10 {
		t.Errorf("cfg.RateLimit.MaxPerWindow = %d, want 10", cfg.RateLimit.MaxPerWindow)
	}
	if cfg.RateLimit.Window != 5*time.Minute {
		t.Errorf("cfg.RateLimit.Window = %v, want 5m", cfg.RateLimit.Window)
	}
	// Untouched sections fall back to defaults.
	if cfg.Service.Name != defaultServiceName {
		t.Errorf("cfg.Service.Name = %q, want %q", cfg.Service.Name, defaultServiceName)
	}
	if cfg.Database.LinksTable != defaultLinksTable {
		t.Errorf("cfg.Database.LinksTable = %q, want %q", cfg.Database.LinksTable, defaultLinksTable)
	}
	if cfg.RateLimit.Backend != BackendMemory {
		t.Errorf("cfg.RateLimit.Backend = %q, want memory", cfg.RateLimit.Backend)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	configPath := writeConfig(t, `
auth:
  admin_secret: "from-file"
  bot_tokens:
    - "file_token"
`)

	t.Setenv("LINK_TRACKER_PORT", "8111")
	t.Setenv("ADMIN_SECRET", "from-env")
	t.Setenv("BOT_TOKENS", "alpha_t1, beta_t2,gamma_t3")
	t.Setenv("RATE_LIMIT_WINDOW", "30m")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil", err)
	}

	if cfg.Service.Port != 8111 {
		t.Errorf("cfg.Service.Port = %d, want 8111", cfg.Service.Port)
	}
	if cfg.Auth.AdminSecret != "from-env" {
		t.Errorf("cfg.Auth.AdminSecret = %q, want from-env", cfg.Auth.AdminSecret)
	}
	want := []string{"alpha_t1", "beta_t2", "gamma_t3"}
	if len(cfg.Auth.BotTokens) != len(want) {
		t.Fatalf("cfg.Auth.BotTokens = %v, want %v", cfg.Auth.BotTokens, want)
	}
	for i, tok := range want {
		if cfg.Auth.BotTokens[i] != tok {
			t.Errorf("cfg.Auth.BotTokens[%d] = %q, want %q", i, cfg.Auth.BotTokens[i], tok)
		}
	}
	if cfg.RateLimit.Window != 30*time.Minute {
		t.Errorf("cfg.RateLimit.Window = %v, want 30m", cfg.RateLimit.Window)
	}
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("ADMIN_SECRET", "env-secret")
	t.Setenv("BOT_TOKENS", "solo_token")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for missing file", err)
	}

	if cfg.Auth.AdminSecret != "env-secret" {
		t.Errorf("cfg.Auth.AdminSecret = %q, want env-secret", cfg.Auth.AdminSecret)
	}
	if cfg.Service.Port != defaultServicePort {
		t.Errorf("cfg.Service.Port = %d, want default %d", cfg.Service.Port, defaultServicePort)
	}
}

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.Service.Name != defaultServiceName {
		t.Errorf("service.name: got %q, want %q", cfg.Service.Name, defaultServiceName)
	}
	if cfg.Service.Port != defaultServicePort {
		t.Errorf("service.port: got %d, want %d", cfg.Service.Port, defaultServicePort)
	}
	if cfg.Service.ShutdownTimeout != defaultShutdownTimeout*time.Second {
		t.Errorf("service.shutdown_timeout: got %v, want %v",
			cfg.Service.ShutdownTimeout, defaultShutdownTimeout*time.Second)
	}
	if cfg.Database.Host != defaultDBHost {
		t.Errorf("database.host: got %q, want %q", cfg.Database.Host, defaultDBHost)
	}
	if cfg.Database.MaxOpenConns != defaultMaxOpenConns {
		t.Errorf("database.max_open_conns: got %d, want %d", cfg.Database.MaxOpenConns, defaultMaxOpenConns)
	}
	if cfg.RateLimit.MaxPerWindow != defaultRateLimitMax {
		t.Errorf("rate_limit.max_per_window: got %d, want %d", cfg.RateLimit.MaxPerWindow, defaultRateLimitMax)
	}
	if cfg.RateLimit.Window != defaultRateLimitWindow {
		t.Errorf("rate_limit.window: got %v, want %v", cfg.RateLimit.Window, defaultRateLimitWindow)
	}
	if cfg.RateLimit.Backend != BackendMemory {
		t.Errorf("rate_limit.backend: got %q, want %q", cfg.RateLimit.Backend, BackendMemory)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging.level: got %q, want info", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		setDefaults(cfg)
		cfg.Auth.AdminSecret = "admin-secret"
		cfg.Auth.BotTokens = []string{"alpha_t1"}
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid config, got: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "missing admin secret",
			mutate:  func(c *Config) { c.Auth.AdminSecret = "" },
			wantSub: "auth.admin_secret",
		},
		{
			name:    "no bot tokens",
			mutate:  func(c *Config) { c.Auth.BotTokens = nil },
			wantSub: "auth.bot_tokens",
		},
		{
			name:    "bad backend",
			mutate:  func(c *Config) { c.RateLimit.Backend = "etcd" },
			wantSub: "rate_limit.backend",
		},
		{
			name:    "redis backend without address",
			mutate:  func(c *Config) { c.RateLimit.Backend = BackendRedis; c.Redis.Address = "" },
			wantSub: "redis.address",
		},
		{
			name:    "unsafe table name",
			mutate:  func(c *Config) { c.Database.LinksTable = "links; DROP TABLE bots" },
			wantSub: "database.links_table",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Service.Port = 70000 },
			wantSub: "service.port",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("error %q does not mention %q", err.Error(), tc.wantSub)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	db := &DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Database: "link_tracker",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=postgres password=secret dbname=link_tracker sslmode=disable"
	if got := db.DSN(); got != expected {
		t.Errorf("DSN:\ngot:  %q\nwant: %q", got, expected)
	}

	db.URL = "postgres://tracker:pw@db:5432/links?sslmode=require"
	if got := db.DSN(); got != db.URL {
		t.Errorf("DSN with URL override: got %q, want %q", got, db.URL)
	}
}
