package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testYAML = `server:
  host: "127.0.0.1"
  port: 3000
  mode: "release"
  timeout: "20s"
  trust_request_id: true
  cors:
    allow_origins: ["https://buyers.procure.test"]
    max_age: "1h"
  metrics:
    enabled: true
    path: "/internal/metrics"
database:
  driver: "postgres"
  sqlite:
    path: "data/test.db"
  postgres:
    host: "db.procure.test"
    port: 5433
    user: "procure"
    password: "secret"
    dbname: "procurebase"
    sslmode: "require"
  pool:
    max_idle_conns: 5
    max_open_conns: 50
    conn_max_lifetime: "30m"
  slow_query: "500ms"
log:
  level: "INFO"
  format: "json"
client:
  base_url: "https://api.procure.test/api/v1"
  page_limit: 20
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_FullYAML(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, testYAML))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	checks := []struct {
		field string
		got   any
		want  any
	}{
		{"Server.Host", cfg.Server.Host, "127.0.0.1"},
		{"Server.Port", cfg.Server.Port, 3000},
		{"Server.Mode", cfg.Server.Mode, "release"},
		{"Server.Timeout", cfg.Server.Timeout, "20s"},
		{"Server.TrustRequestID", cfg.Server.TrustRequestID, true},
		{"Server.CORS.AllowOrigins", strings.Join(cfg.Server.CORS.AllowOrigins, ","), "https://buyers.procure.test"},
		{"Server.CORS.MaxAge", cfg.Server.CORS.MaxAge, "1h"},
		{"Server.Metrics.Enabled", cfg.Server.Metrics.Enabled, true},
		{"Server.Metrics.Path", cfg.Server.Metrics.Path, "/internal/metrics"},
		{"Database.Driver", cfg.Database.Driver, "postgres"},
		{"Postgres.Host", cfg.Database.Postgres.Host, "db.procure.test"},
		{"Postgres.Port", cfg.Database.Postgres.Port, 5433},
		{"Postgres.User", cfg.Database.Postgres.User, "procure"},
		{"Postgres.DBName", cfg.Database.Postgres.DBName, "procurebase"},
		{"Postgres.SSLMode", cfg.Database.Postgres.SSLMode, "require"},
		{"Pool.MaxIdleConns", cfg.Database.Pool.MaxIdleConns, 5},
		{"Pool.MaxOpenConns", cfg.Database.Pool.MaxOpenConns, 50},
		{"Pool.ConnMaxLifetime", cfg.Database.Pool.ConnMaxLifetime, "30m"},
		{"Database.SlowQuery", cfg.Database.SlowQuery, "500ms"},
		{"Log.Level", cfg.Log.Level, "info"},
		{"Log.Format", cfg.Log.Format, "json"},
		{"Client.BaseURL", cfg.Client.BaseURL, "https://api.procure.test/api/v1"},
		{"Client.PageLimit", cfg.Client.PageLimit, 20},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
		}
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeTestConfig(t, testYAML)

	t.Setenv("APP__SERVER__PORT", "9090")
	t.Setenv("APP__DATABASE__DRIVER", "sqlite")
	t.Setenv("APP__LOG__LEVEL", "error")
	// Single underscores inside a key are preserved.
	t.Setenv("APP__DATABASE__POOL__MAX_IDLE_CONNS", "20")
	t.Setenv("APP__DATABASE__SLOW_QUERY", "1s")
	t.Setenv("APP__CLIENT__SEARCH_DEBOUNCE", "150ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
	}
	if cfg.Database.Pool.MaxIdleConns != 20 {
		t.Errorf("Pool.MaxIdleConns = %d, want 20", cfg.Database.Pool.MaxIdleConns)
	}
	if cfg.Database.SlowQuery != "1s" {
		t.Errorf("Database.SlowQuery = %q, want 1s", cfg.Database.SlowQuery)
	}
	if got := cfg.Client.SearchDebounceDuration(); got != 150*time.Millisecond {
		t.Errorf("SearchDebounceDuration() = %v, want 150ms", got)
	}
	// Values without an override come from the file.
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1", cfg.Server.Host)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
}

// validConfig returns a configuration that passes Validate.
func validConfig() Config {
	return Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8080, Mode: "debug"},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "data/test.db"},
			Postgres: PostgresConfig{
				Host: "db.procure.test", Port: 5432, User: "procure", DBName: "procurebase", SSLMode: "disable",
			},
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	postgres := func(c *Config) { c.Database.Driver = "postgres" }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid sqlite", mutate: func(*Config) {}},
		{name: "valid postgres", mutate: postgres},
		{name: "mode padded", mutate: func(c *Config) { c.Server.Mode = " release " }},
		{name: "unknown mode", mutate: func(c *Config) { c.Server.Mode = "staging" }, wantErr: "server.mode"},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "server.port"},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "blank host", mutate: func(c *Config) { c.Server.Host = "  " }, wantErr: "server.host"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "database.driver"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.SQLite.Path = " " }, wantErr: "database.sqlite.path"},
		{name: "postgres without host", mutate: func(c *Config) { postgres(c); c.Database.Postgres.Host = "" }, wantErr: "database.postgres.host"},
		{name: "postgres without user", mutate: func(c *Config) { postgres(c); c.Database.Postgres.User = "" }, wantErr: "database.postgres.user"},
		{name: "postgres without dbname", mutate: func(c *Config) { postgres(c); c.Database.Postgres.DBName = "" }, wantErr: "database.postgres.dbname"},
		{name: "postgres bad port", mutate: func(c *Config) { postgres(c); c.Database.Postgres.Port = 0 }, wantErr: "database.postgres.port"},
		{name: "postgres bad sslmode", mutate: func(c *Config) { postgres(c); c.Database.Postgres.SSLMode = "sometimes" }, wantErr: "database.postgres.sslmode"},
		{
			name: "release requires tls to postgres",
			mutate: func(c *Config) {
				postgres(c)
				c.Server.Mode = "release"
			},
			wantErr: "database.postgres.sslmode",
		},
		{
			name: "release with verify-full",
			mutate: func(c *Config) {
				postgres(c)
				c.Server.Mode = "release"
				c.Database.Postgres.SSLMode = "verify-full"
			},
		},
		{name: "zero server timeout", mutate: func(c *Config) { c.Server.Timeout = "0s" }, wantErr: "server.timeout"},
		{name: "bad server timeout", mutate: func(c *Config) { c.Server.Timeout = "later" }, wantErr: "server.timeout"},
		{name: "negative cors max age", mutate: func(c *Config) { c.Server.CORS.MaxAge = "-1h" }, wantErr: "server.cors.max_age"},
		{name: "negative conn lifetime", mutate: func(c *Config) { c.Database.Pool.ConnMaxLifetime = "-1m" }, wantErr: "database.pool.conn_max_lifetime"},
		{name: "zero slow query", mutate: func(c *Config) { c.Database.SlowQuery = "0ms" }, wantErr: "database.slow_query"},
		{name: "relative metrics path", mutate: func(c *Config) { c.Server.Metrics.Path = "metrics" }, wantErr: "server.metrics.path"},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: "log.level"},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want contains %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_NormalizesOptionalFields(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Mode = " test "
	cfg.Server.Timeout = "   "
	cfg.Server.CORS.MaxAge = "\t"
	cfg.Database.Pool.ConnMaxLifetime = " "
	cfg.Database.SlowQuery = " 300ms "
	cfg.Log.Level = "WARN"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	if cfg.Server.Mode != "test" {
		t.Errorf("Server.Mode = %q, want test", cfg.Server.Mode)
	}
	if cfg.Server.Timeout != "" || cfg.Server.CORS.MaxAge != "" || cfg.Database.Pool.ConnMaxLifetime != "" {
		t.Errorf("whitespace durations should be unset, got timeout=%q max_age=%q lifetime=%q",
			cfg.Server.Timeout, cfg.Server.CORS.MaxAge, cfg.Database.Pool.ConnMaxLifetime)
	}
	if cfg.Database.SlowQuery != "300ms" {
		t.Errorf("Database.SlowQuery = %q, want 300ms", cfg.Database.SlowQuery)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Server.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Server.Metrics.Path = %q, want %q", cfg.Server.Metrics.Path, DefaultMetricsPath)
	}
	if cfg.Client.PageLimit != DefaultPageLimit {
		t.Errorf("Client.PageLimit = %d, want %d", cfg.Client.PageLimit, DefaultPageLimit)
	}
}

func TestLoad_DefaultConfig(t *testing.T) {
	cfg, err := Load("../../configs/config.yaml")
	if err != nil {
		t.Fatalf("Load() error on project config: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if !cfg.Server.Metrics.Enabled {
		t.Error("Server.Metrics.Enabled = false, want true")
	}
	if cfg.Client.BaseURL != "http://localhost:8080/api/v1" {
		t.Errorf("Client.BaseURL = %q", cfg.Client.BaseURL)
	}
	if got := cfg.Client.SearchDebounceDuration(); got != 600*time.Millisecond {
		t.Errorf("SearchDebounceDuration() = %v, want 600ms", got)
	}
}

// validBaseYAML returns a minimal valid YAML config string (sqlite, debug mode).
func validBaseYAML(extras string) string {
	return `server:
  host: "127.0.0.1"
  port: 3000
  mode: "debug"
database:
  driver: "sqlite"
  sqlite:
    path: "data/test.db"
  pool:
    max_idle_conns: 1
    max_open_conns: 1
    conn_max_lifetime: "1m"
log:
  level: "info"
  format: "json"
` + extras
}

// validReleaseBaseYAML returns a minimal valid YAML config string (sqlite, release mode).
func validReleaseBaseYAML(extras string) string {
	return `server:
  host: "127.0.0.1"
  port: 3000
  mode: "release"
database:
  driver: "sqlite"
  sqlite:
    path: "data/test.db"
  pool:
    max_idle_conns: 1
    max_open_conns: 1
    conn_max_lifetime: "1m"
log:
  level: "info"
  format: "json"
` + extras
}

func TestLoad_ClientConfig(t *testing.T) {
	tests := []struct {
		name        string
		client      string
		wantErr     string
		wantLimit   int
		wantBaseURL string
	}{
		{
			name:      "omitted section takes defaults",
			client:    "",
			wantLimit: DefaultPageLimit,
		},
		{
			name: "full section",
			client: `client:
  base_url: " http://localhost:8080/api/v1 "
  timeout: "5s"
  retry_max: 2
  page_limit: 25
  search_debounce: "250ms"
`,
			wantLimit:   25,
			wantBaseURL: "http://localhost:8080/api/v1",
		},
		{
			name:    "relative base url",
			client:  "client:\n  base_url: \"/api/v1\"\n",
			wantErr: "client.base_url",
		},
		{
			name:    "unsupported scheme",
			client:  "client:\n  base_url: \"ftp://example.com\"\n",
			wantErr: "client.base_url",
		},
		{
			name:    "bad timeout",
			client:  "client:\n  timeout: \"soon\"\n",
			wantErr: "client.timeout",
		},
		{
			name:    "non-positive debounce",
			client:  "client:\n  search_debounce: \"0s\"\n",
			wantErr: "client.search_debounce",
		},
		{
			name:    "negative retries",
			client:  "client:\n  retry_max: -1\n",
			wantErr: "client.retry_max",
		},
		{
			name:    "page limit too large",
			client:  "client:\n  page_limit: 500\n",
			wantErr: "client.page_limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeTestConfig(t, validBaseYAML(tt.client)))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Load() error = %v, want contains %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if cfg.Client.PageLimit != tt.wantLimit {
				t.Errorf("Client.PageLimit = %d, want %d", cfg.Client.PageLimit, tt.wantLimit)
			}
			if cfg.Client.BaseURL != tt.wantBaseURL {
				t.Errorf("Client.BaseURL = %q, want %q", cfg.Client.BaseURL, tt.wantBaseURL)
			}
		})
	}
}

func TestClientConfig_Durations(t *testing.T) {
	var empty ClientConfig
	if got := empty.TimeoutDuration(); got != DefaultClientTimeout {
		t.Errorf("TimeoutDuration() = %v, want %v", got, DefaultClientTimeout)
	}
	if got := empty.SearchDebounceDuration(); got != DefaultSearchDebounce {
		t.Errorf("SearchDebounceDuration() = %v, want %v", got, DefaultSearchDebounce)
	}

	set := ClientConfig{Timeout: "3s", SearchDebounce: "150ms"}
	if got := set.TimeoutDuration(); got != 3*time.Second {
		t.Errorf("TimeoutDuration() = %v, want 3s", got)
	}
	if got := set.SearchDebounceDuration(); got != 150*time.Millisecond {
		t.Errorf("SearchDebounceDuration() = %v, want 150ms", got)
	}
}

func TestLoad_MetricsConfig(t *testing.T) {
	cfg, err := Load(writeTestConfig(t, validReleaseBaseYAML("")))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Metrics.Enabled {
		t.Error("Server.Metrics.Enabled = true, want false by default")
	}
	if cfg.Server.Metrics.Path != DefaultMetricsPath {
		t.Errorf("Server.Metrics.Path = %q, want %q", cfg.Server.Metrics.Path, DefaultMetricsPath)
	}

	t.Setenv("APP__SERVER__METRICS__ENABLED", "true")
	t.Setenv("APP__SERVER__METRICS__PATH", "/internal/metrics")
	cfg, err = Load(writeTestConfig(t, validReleaseBaseYAML("")))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Server.Metrics.Enabled || cfg.Server.Metrics.Path != "/internal/metrics" {
		t.Errorf("Server.Metrics = %+v, want enabled at /internal/metrics", cfg.Server.Metrics)
	}

	t.Setenv("APP__SERVER__METRICS__PATH", "metrics")
	if _, err := Load(writeTestConfig(t, validReleaseBaseYAML(""))); err == nil || !strings.Contains(err.Error(), "server.metrics.path") {
		t.Fatalf("Load() error = %v, want server.metrics.path error", err)
	}
}
