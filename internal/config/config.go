package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/bolao-sca/internal/domain/lock"
	"github.com/riskibarqy/bolao-sca/internal/domain/prediction"
	"github.com/riskibarqy/bolao-sca/internal/platform/clock"
	"github.com/riskibarqy/bolao-sca/internal/platform/logging"
	"github.com/riskibarqy/bolao-sca/internal/platform/resilience"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	ShutdownTimeout            time.Duration
	LogLevel                   logging.Level
	CORSAllowedOrigins         []string
	StoreDriver                string
	DBURL                      string
	DBBinaryParameters         bool
	DBMaxOpenConns             int
	DBBootstrapSeed            bool
	SeedFile                   string
	CacheEnabled               bool
	CacheTTL                   time.Duration
	CacheBackend               string
	RedisURL                   string
	RedisCircuitFailureCount   int
	RedisCircuitOpenTimeout    time.Duration
	RedisCircuitHalfOpenMaxReq int
	AuthJWTSecret              string
	AuthJWTIssuer              string
	AuthAdminRole              string
	BettingLocation            *time.Location
	BettingCloseWeekday        time.Weekday
	BettingCloseHour           int
	BettingCloseMinute         int
	BettingReopenWeekday       time.Weekday
	ScoringPointsPerHit        int
	RescoreWorkers             int
	PredictionRateLimitRPS     float64
	PredictionRateLimitBurst   int
	MetricsEnabled             bool
	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "bolao-sca-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		LogLevel:           logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		SeedFile:           strings.TrimSpace(getEnv("SEED_FILE", "")),
		AuthJWTSecret:      strings.TrimSpace(getEnv("AUTH_JWT_SECRET", "")),
		AuthJWTIssuer:      strings.TrimSpace(getEnv("AUTH_JWT_ISSUER", "bolao-sca")),
		AuthAdminRole:      strings.TrimSpace(getEnv("AUTH_ADMIN_ROLE", "admin")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.AuthJWTSecret == "" && appEnv != EnvDev {
		return Config{}, fmt.Errorf("AUTH_JWT_SECRET is required when APP_ENV=%s", appEnv)
	}
	if cfg.AuthAdminRole == "" {
		return Config{}, fmt.Errorf("AUTH_ADMIN_ROLE cannot be empty")
	}

	if cfg.ReadTimeout, err = time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s")); err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	if cfg.WriteTimeout, err = time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s")); err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("APP_SHUTDOWN_TIMEOUT", "10s")); err != nil {
		return Config{}, fmt.Errorf("parse APP_SHUTDOWN_TIMEOUT: %w", err)
	}
	if cfg.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be > 0")
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", StoreMemory)))
	switch cfg.StoreDriver {
	case StoreMemory, StorePostgres:
	default:
		return Config{}, fmt.Errorf("invalid STORE_DRIVER %q: valid values are %s, %s", cfg.StoreDriver, StoreMemory, StorePostgres)
	}
	cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", ""))
	if cfg.StoreDriver == StorePostgres && cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORE_DRIVER=%s", StorePostgres)
	}
	if cfg.DBBinaryParameters, err = strconv.ParseBool(getEnv("DB_BINARY_PARAMETERS", "true")); err != nil {
		return Config{}, fmt.Errorf("parse DB_BINARY_PARAMETERS: %w", err)
	}
	if cfg.DBMaxOpenConns, err = getEnvAsInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if cfg.DBMaxOpenConns < 1 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 1")
	}
	if cfg.DBBootstrapSeed, err = strconv.ParseBool(getEnv("DB_BOOTSTRAP_SEED", "false")); err != nil {
		return Config{}, fmt.Errorf("parse DB_BOOTSTRAP_SEED: %w", err)
	}

	if cfg.CacheEnabled, err = strconv.ParseBool(getEnv("CACHE_ENABLED", "true")); err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	if cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "60s")); err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cfg.CacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}
	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(getEnv("CACHE_BACKEND", CacheBackendMemory)))
	switch cfg.CacheBackend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return Config{}, fmt.Errorf("invalid CACHE_BACKEND %q: valid values are %s, %s", cfg.CacheBackend, CacheBackendMemory, CacheBackendRedis)
	}
	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))
	if cfg.CacheEnabled && cfg.CacheBackend == CacheBackendRedis && cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL is required when CACHE_BACKEND=%s", CacheBackendRedis)
	}
	breakerDefaults := resilience.DefaultCircuitBreakerConfig()
	if cfg.RedisCircuitFailureCount, err = getEnvAsInt("REDIS_CIRCUIT_FAILURE_COUNT", breakerDefaults.FailureThreshold); err != nil {
		return Config{}, fmt.Errorf("parse REDIS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.RedisCircuitOpenTimeout, err = time.ParseDuration(getEnv("REDIS_CIRCUIT_OPEN_TIMEOUT", breakerDefaults.OpenTimeout.String())); err != nil {
		return Config{}, fmt.Errorf("parse REDIS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if cfg.RedisCircuitHalfOpenMaxReq, err = getEnvAsInt("REDIS_CIRCUIT_HALF_OPEN_MAX_REQ", breakerDefaults.HalfOpenMaxReq); err != nil {
		return Config{}, fmt.Errorf("parse REDIS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if err := cfg.RedisCircuitBreaker().Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid REDIS_CIRCUIT_* settings: %w", err)
	}

	if err := loadBettingWindow(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.ScoringPointsPerHit, err = getEnvAsInt("SCORING_POINTS_PER_HIT", prediction.DefaultPointsPerHit); err != nil {
		return Config{}, fmt.Errorf("parse SCORING_POINTS_PER_HIT: %w", err)
	}
	if err := cfg.ScoringRule().Validate(); err != nil {
		return Config{}, fmt.Errorf("SCORING_POINTS_PER_HIT: %w", err)
	}
	if cfg.RescoreWorkers, err = getEnvAsInt("RESCORE_WORKERS", 4); err != nil {
		return Config{}, fmt.Errorf("parse RESCORE_WORKERS: %w", err)
	}
	if cfg.RescoreWorkers < 1 {
		return Config{}, fmt.Errorf("RESCORE_WORKERS must be >= 1")
	}

	if cfg.PredictionRateLimitRPS, err = strconv.ParseFloat(getEnv("PREDICTION_RATE_LIMIT_RPS", "2"), 64); err != nil {
		return Config{}, fmt.Errorf("parse PREDICTION_RATE_LIMIT_RPS: %w", err)
	}
	if cfg.PredictionRateLimitRPS < 0 {
		return Config{}, fmt.Errorf("PREDICTION_RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.PredictionRateLimitBurst, err = getEnvAsInt("PREDICTION_RATE_LIMIT_BURST", 5); err != nil {
		return Config{}, fmt.Errorf("parse PREDICTION_RATE_LIMIT_BURST: %w", err)
	}
	if cfg.PredictionRateLimitBurst < 1 {
		return Config{}, fmt.Errorf("PREDICTION_RATE_LIMIT_BURST must be >= 1")
	}

	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadBettingWindow(cfg *Config) error {
	loc, err := clock.LoadLocation(getEnv("BETTING_TIMEZONE", clock.DefaultTimeZone))
	if err != nil {
		return fmt.Errorf("parse BETTING_TIMEZONE: %w", err)
	}
	cfg.BettingLocation = loc

	if cfg.BettingCloseWeekday, err = lock.ParseWeekday(getEnv("BETTING_CLOSE_WEEKDAY", "saturday")); err != nil {
		return fmt.Errorf("parse BETTING_CLOSE_WEEKDAY: %w", err)
	}
	if cfg.BettingCloseHour, cfg.BettingCloseMinute, err = lock.ParseClock(getEnv("BETTING_CLOSE_TIME", "14:00")); err != nil {
		return fmt.Errorf("parse BETTING_CLOSE_TIME: %w", err)
	}
	if cfg.BettingReopenWeekday, err = lock.ParseWeekday(getEnv("BETTING_REOPEN_WEEKDAY", "monday")); err != nil {
		return fmt.Errorf("parse BETTING_REOPEN_WEEKDAY: %w", err)
	}
	if err := cfg.LockWindow().Validate(); err != nil {
		return fmt.Errorf("betting window: %w", err)
	}
	return nil
}

func loadObservability(cfg *Config) error {
	var err error
	if cfg.MetricsEnabled, err = strconv.ParseBool(getEnv("METRICS_ENABLED", "true")); err != nil {
		return fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	if cfg.PprofEnabled, err = strconv.ParseBool(getEnv("PPROF_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))

	if cfg.UptraceEnabled, err = strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.UptraceLogsEnabled, err = strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true")); err != nil {
		return fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	if cfg.PyroscopeEnabled, err = strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false")); err != nil {
		return fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	if cfg.PyroscopeUploadRate, err = time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s")); err != nil {
		return fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if cfg.PyroscopeUploadRate <= 0 {
		return fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}
	return nil
}

// LockWindow is the weekly betting window described by the BETTING_* variables.
func (c Config) LockWindow() lock.Window {
	return lock.Window{
		Location:      c.BettingLocation,
		CloseWeekday:  c.BettingCloseWeekday,
		CloseHour:     c.BettingCloseHour,
		CloseMinute:   c.BettingCloseMinute,
		ReopenWeekday: c.BettingReopenWeekday,
	}
}

func (c Config) ScoringRule() prediction.Rule {
	return prediction.Rule{PointsPerHit: c.ScoringPointsPerHit}
}

func (c Config) RedisCircuitBreaker() resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		FailureThreshold: c.RedisCircuitFailureCount,
		OpenTimeout:      c.RedisCircuitOpenTimeout,
		HalfOpenMaxReq:   c.RedisCircuitHalfOpenMaxReq,
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
	for _, item := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(parts[1]), "\"'")
		}
	}
	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
