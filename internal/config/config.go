package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ngreenfield/football-pickem/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                          string
	ServiceName                     string
	ServiceVersion                  string
	HTTPAddr                        string
	ReadTimeout                     time.Duration
	WriteTimeout                    time.Duration
	LogLevel                        logging.Level
	DBURL                           string
	DBDisablePreparedBinary         bool
	CacheEnabled                    bool
	CacheTTL                        time.Duration
	CORSAllowedOrigins              []string
	InternalJobToken                string
	AuthBaseURL                     string
	AuthIntrospectPath              string
	AuthTimeout                     time.Duration
	PprofEnabled                    bool
	PprofAddr                       string
	UptraceEnabled                  bool
	UptraceDSN                      string
	PyroscopeEnabled                bool
	PyroscopeServerAddress          string
	PyroscopeAppName                string
	PyroscopeAuthToken              string
	PyroscopeBasicAuthUser          string
	PyroscopeBasicAuthPassword      string
	PyroscopeUploadRate             time.Duration
	SportsDataEnabled               bool
	SportsDataBaseURL               string
	SportsDataAPIKey                string
	SportsDataSeason                string
	SportsDataTimeout               time.Duration
	SportsDataMaxRetries            int
	SportsDataMaxWorkers            int
	SportsDataCircuitEnabled        bool
	SportsDataCircuitFailureCount   int
	SportsDataCircuitOpenTimeout    time.Duration
	SportsDataCircuitHalfOpenMaxReq int
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	sportsDataEnabled, err := strconv.ParseBool(getEnv("SPORTSDATA_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSDATA_ENABLED: %w", err)
	}
	sportsDataAPIKey := strings.TrimSpace(getEnv("SPORTSDATA_API_KEY", ""))
	sportsDataSeason := strings.TrimSpace(getEnv("SPORTSDATA_SEASON", ""))
	if sportsDataEnabled {
		if sportsDataAPIKey == "" {
			return Config{}, fmt.Errorf("SPORTSDATA_API_KEY is required when SPORTSDATA_ENABLED=true")
		}
		if sportsDataSeason == "" {
			return Config{}, fmt.Errorf("SPORTSDATA_SEASON is required when SPORTSDATA_ENABLED=true")
		}
	}
	sportsDataTimeout, err := time.ParseDuration(getEnv("SPORTSDATA_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSDATA_TIMEOUT: %w", err)
	}
	if sportsDataTimeout <= 0 {
		return Config{}, fmt.Errorf("SPORTSDATA_TIMEOUT must be > 0")
	}
	sportsDataMaxRetries, err := getEnvAsInt("SPORTSDATA_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSDATA_MAX_RETRIES: %w", err)
	}
	if sportsDataMaxRetries < 0 {
		return Config{}, fmt.Errorf("SPORTSDATA_MAX_RETRIES must be >= 0")
	}
	sportsDataMaxWorkers, err := getEnvAsInt("SPORTSDATA_MAX_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSDATA_MAX_WORKERS: %w", err)
	}
	if sportsDataMaxWorkers < 1 {
		return Config{}, fmt.Errorf("SPORTSDATA_MAX_WORKERS must be >= 1")
	}
	sportsDataCircuitEnabled, err := strconv.ParseBool(getEnv("SPORTSDATA_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSDATA_CIRCUIT_ENABLED: %w", err)
	}
	sportsDataCircuitFailureCount, err := getEnvAsInt("SPORTSDATA_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSDATA_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if sportsDataCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("SPORTSDATA_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	sportsDataCircuitOpenTimeout, err := time.ParseDuration(getEnv("SPORTSDATA_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSDATA_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if sportsDataCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("SPORTSDATA_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	sportsDataCircuitHalfOpenMaxReq, err := getEnvAsInt("SPORTSDATA_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSDATA_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if sportsDataCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("SPORTSDATA_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	authTimeout, err := time.ParseDuration(getEnv("AUTH_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUTH_TIMEOUT: %w", err)
	}
	if authTimeout <= 0 {
		return Config{}, fmt.Errorf("AUTH_TIMEOUT must be > 0")
	}

	cfg := Config{
		AppEnv:                          appEnv,
		ServiceName:                     getEnv("APP_SERVICE_NAME", "football-pickem-api"),
		ServiceVersion:                  getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                        getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                     readTimeout,
		WriteTimeout:                    writeTimeout,
		LogLevel:                        parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		DBURL:                           strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:         dbDisablePreparedBinary,
		CacheEnabled:                    cacheEnabled,
		CacheTTL:                        cacheTTL,
		CORSAllowedOrigins:              splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:                strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		AuthBaseURL:                     getEnv("AUTH_BASE_URL", "http://localhost:8081"),
		AuthIntrospectPath:              getEnv("AUTH_INTROSPECT_PATH", "/v1/auth/introspect"),
		AuthTimeout:                     authTimeout,
		PprofEnabled:                    pprofEnabled,
		PprofAddr:                       pprofAddr,
		UptraceEnabled:                  uptraceEnabled,
		UptraceDSN:                      uptraceDSN,
		PyroscopeEnabled:                pyroscopeEnabled,
		PyroscopeServerAddress:          pyroscopeServerAddress,
		PyroscopeAuthToken:              strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:          strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:      strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:             pyroscopeUploadRate,
		SportsDataEnabled:               sportsDataEnabled,
		SportsDataBaseURL:               strings.TrimSpace(getEnv("SPORTSDATA_BASE_URL", "https://api.sportsdata.io/v3/nfl/scores/json")),
		SportsDataAPIKey:                sportsDataAPIKey,
		SportsDataSeason:                sportsDataSeason,
		SportsDataTimeout:               sportsDataTimeout,
		SportsDataMaxRetries:            sportsDataMaxRetries,
		SportsDataMaxWorkers:            sportsDataMaxWorkers,
		SportsDataCircuitEnabled:        sportsDataCircuitEnabled,
		SportsDataCircuitFailureCount:   sportsDataCircuitFailureCount,
		SportsDataCircuitOpenTimeout:    sportsDataCircuitOpenTimeout,
		SportsDataCircuitHalfOpenMaxReq: sportsDataCircuitHalfOpenMaxReq,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}
