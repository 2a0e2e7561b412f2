package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `uptrace-dsn="https://token@api.uptrace.dev/1234"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev/1234" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_SportsDataRequiresKeyAndSeasonWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SPORTSDATA_ENABLED", "true")
	t.Setenv("SPORTSDATA_API_KEY", "")
	t.Setenv("SPORTSDATA_SEASON", "2025REG")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when SPORTSDATA_ENABLED=true without SPORTSDATA_API_KEY")
	}

	t.Setenv("SPORTSDATA_API_KEY", "feed-key")
	t.Setenv("SPORTSDATA_SEASON", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when SPORTSDATA_ENABLED=true without SPORTSDATA_SEASON")
	}
}

func TestLoad_SportsDataParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SPORTSDATA_ENABLED", "true")
	t.Setenv("SPORTSDATA_API_KEY", "feed-key")
	t.Setenv("SPORTSDATA_SEASON", "2025REG")
	t.Setenv("SPORTSDATA_TIMEOUT", "7s")
	t.Setenv("SPORTSDATA_MAX_RETRIES", "3")
	t.Setenv("SPORTSDATA_MAX_WORKERS", "8")
	t.Setenv("SPORTSDATA_CIRCUIT_FAILURE_COUNT", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.SportsDataEnabled {
		t.Fatalf("expected SportsDataEnabled=true")
	}
	if cfg.SportsDataSeason != "2025REG" {
		t.Fatalf("unexpected SportsDataSeason: %q", cfg.SportsDataSeason)
	}
	if cfg.SportsDataTimeout != 7*time.Second {
		t.Fatalf("unexpected SportsDataTimeout: %s", cfg.SportsDataTimeout)
	}
	if cfg.SportsDataMaxRetries != 3 || cfg.SportsDataMaxWorkers != 8 {
		t.Fatalf("unexpected retry/worker config: %d/%d", cfg.SportsDataMaxRetries, cfg.SportsDataMaxWorkers)
	}
	if cfg.SportsDataCircuitFailureCount != 2 {
		t.Fatalf("unexpected SportsDataCircuitFailureCount: %d", cfg.SportsDataCircuitFailureCount)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != "football-pickem-api" {
		t.Fatalf("unexpected ServiceName: %q", cfg.ServiceName)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.ReadTimeout != 10*time.Second || cfg.WriteTimeout != 15*time.Second {
		t.Fatalf("unexpected timeouts: %s/%s", cfg.ReadTimeout, cfg.WriteTimeout)
	}
	if !cfg.CacheEnabled || cfg.CacheTTL != 60*time.Second {
		t.Fatalf("unexpected cache config: %v/%s", cfg.CacheEnabled, cfg.CacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected CORSAllowedOrigins: %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.DBDisablePreparedBinary {
		t.Fatalf("expected DBDisablePreparedBinary=true by default")
	}
	if cfg.SportsDataEnabled {
		t.Fatalf("expected SportsDataEnabled=false by default")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "debug", want: "debug"},
		{in: "warn", want: "warn"},
		{in: "warning", want: "warn"},
		{in: "error", want: "error"},
		{in: "info", want: "info"},
		{in: "bogus", want: "info"},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.in).String(); got != tt.want {
			t.Fatalf("parseLogLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" https://a.example.com , ,https://b.example.com,")
	if len(got) != 2 || got[0] != "https://a.example.com" || got[1] != "https://b.example.com" {
		t.Fatalf("unexpected splitCSV result: %v", got)
	}
}
