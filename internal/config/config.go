// Package config provides application configuration loaded from environment
// variables (and optionally a YAML file) with defaults and validation. It
// centralizes server timeouts, logging, database, authentication, caching,
// analytics, rate limiting, and observability settings.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"-" env:"-"`
	// raw comma separated list as read from the environment
	AllowedOriginsRaw string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS"`
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool          `yaml:"enable_hsts"  env:"ENABLE_HSTS"  env-default:"false"`
	HSTSMaxAge time.Duration `yaml:"hsts_max_age" env:"HSTS_MAX_AGE" env-default:"4320h"`
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    `yaml:"enabled"      env:"OTEL_ENABLED"                env-default:"false"`
	Endpoint    string  `yaml:"endpoint"     env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317"`
	Insecure    bool    `yaml:"insecure"     env:"OTEL_EXPORTER_OTLP_INSECURE" env-default:"true"`
	ServiceName string  `yaml:"service_name" env:"OTEL_SERVICE_NAME"           env-default:"courtdesk-backend"`
	SampleRatio float64 `yaml:"sample_ratio" env:"OTEL_TRACES_SAMPLER_ARG"     env-default:"1.0"`
}

// DatabaseConfig selects the store driver. DBPath is used by sqlite and DSN
// by postgres.
type DatabaseConfig struct {
	Driver string `yaml:"driver"  env:"DB_DRIVER" env-default:"sqlite"`
	DBPath string `yaml:"path"    env:"DB_PATH"   env-default:"courtdesk.db"`
	DSN    string `yaml:"dsn"     env:"DATABASE_DSN"`
}

// AuthConfig holds session token and password hashing settings.
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret"         env:"AUTH_JWT_SECRET"`
	JWTIssuer        string        `yaml:"jwt_issuer"         env:"AUTH_JWT_ISSUER"         env-default:"courtdesk"`
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl"   env:"AUTH_ACCESS_TOKEN_TTL"   env-default:"12h"`
	PasswordHashCost int           `yaml:"password_hash_cost" env:"AUTH_PASSWORD_HASH_COST" env-default:"12"`
	MinPasswordLen   int           `yaml:"min_password_len"   env:"AUTH_MIN_PASSWORD_LEN"   env-default:"8"`
	// LocationHeader names the request header carrying a client location label
	// (set by the edge proxy); it feeds access-log analytics.
	LocationHeader string `yaml:"location_header" env:"AUTH_LOCATION_HEADER" env-default:"X-Client-Location"`
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        `yaml:"port"                env:"PORT"                env-default:"8080"`
	ReadTimeout       time.Duration `yaml:"read_timeout"        env:"READ_TIMEOUT"        env-default:"15s"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"READ_HEADER_TIMEOUT" env-default:"10s"`
	WriteTimeout      time.Duration `yaml:"write_timeout"       env:"WRITE_TIMEOUT"       env-default:"20s"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"        env:"IDLE_TIMEOUT"        env-default:"60s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"    env:"SHUTDOWN_TIMEOUT"    env-default:"10s"`
	MaxHeaderBytes    int           `yaml:"max_header_bytes"    env:"MAX_HEADER_BYTES"    env-default:"1048576"`
	GinMode           string        `yaml:"gin_mode"            env:"GIN_MODE"            env-default:"release"` // debug|release|test

	// Logging / Docs
	LogLevel       string `yaml:"log_level"       env:"LOG_LEVEL"       env-default:"info"` // debug|info|warn|error|fatal|panic
	LogPretty      bool   `yaml:"log_pretty"      env:"LOG_PRETTY"      env-default:"false"`
	SwaggerEnabled bool   `yaml:"swagger_enabled" env:"SWAGGER_ENABLED" env-default:"false"`
	APIBasePath    string `yaml:"api_base_path"   env:"API_BASE_PATH"   env-default:"/api/v1"`

	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`

	// Query cache freshness for entity lists; 0 keeps entries until invalidated.
	CacheTTL time.Duration `yaml:"cache_ttl" env:"CACHE_TTL" env-default:"30s"`

	// Analytics bucketing time zone (IANA name).
	AnalyticsTimezone string `yaml:"analytics_timezone" env:"ANALYTICS_TIMEZONE" env-default:"UTC"`

	// Rate limiting
	RateRPS   float64 `yaml:"rate_rps"   env:"RATE_RPS"   env-default:"5"`
	RateBurst int     `yaml:"rate_burst" env:"RATE_BURST" env-default:"10"`

	// Web protection
	CORS     CORSConfig     `yaml:"cors"`
	Security SecurityConfig `yaml:"security"`

	// Idempotency
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl" env:"IDEMPOTENCY_TTL" env-default:"24h"`

	// Observability
	OTEL OTELConfig `yaml:"otel"`
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from CONFIG_FILE (when set) and the environment,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	var cfg Config
	var err error
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return cfg, err
	}
	cfg.normalize()
	return cfg, cfg.validate()
}

func (cfg *Config) normalize() {
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	cfg.GinMode = strings.ToLower(strings.TrimSpace(cfg.GinMode))
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	cfg.APIBasePath = normalizeBasePath(cfg.APIBasePath)
	cfg.CORS.AllowedOrigins = splitCSV(cfg.CORS.AllowedOriginsRaw)
}

func (cfg Config) validate() error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 || cfg.ShutdownTimeout <= 0 {
		return errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.Database.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.Database.DBPath) == "" {
			return errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.Database.DSN) == "" {
			return errors.New("DATABASE_DSN is required when DB_DRIVER=postgres")
		}
	default:
		return errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	if len(cfg.Auth.JWTSecret) < 32 {
		return errors.New("AUTH_JWT_SECRET must be at least 32 characters")
	}
	if cfg.Auth.AccessTokenTTL <= 0 {
		return errors.New("AUTH_ACCESS_TOKEN_TTL must be > 0")
	}
	if cfg.Auth.PasswordHashCost < 4 || cfg.Auth.PasswordHashCost > 31 {
		return errors.New("AUTH_PASSWORD_HASH_COST must be between 4 and 31")
	}
	if cfg.Auth.MinPasswordLen < 1 {
		return errors.New("AUTH_MIN_PASSWORD_LEN must be >= 1")
	}
	if cfg.CacheTTL < 0 {
		return errors.New("CACHE_TTL must be >= 0")
	}
	if _, err := time.LoadLocation(cfg.AnalyticsTimezone); err != nil {
		return errors.New("ANALYTICS_TIMEZONE must be a valid IANA time zone")
	}
	if cfg.RateRPS < 0 {
		return errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return nil
}

// Location returns the analytics time zone, falling back to UTC.
func (cfg Config) Location() *time.Location {
	if loc, err := time.LoadLocation(cfg.AnalyticsTimezone); err == nil {
		return loc
	}
	return time.UTC
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
