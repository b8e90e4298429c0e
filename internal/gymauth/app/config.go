package app

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	httpapi "github.com/aussiebroadwan/gymauth/internal/gymauth/http"
	"github.com/aussiebroadwan/gymauth/pkg/httpx"
	"github.com/aussiebroadwan/gymauth/pkg/jwtx"
	"gopkg.in/yaml.v3"
)

// Config is read from an optional YAML file (GYM_CONFIG_FILE) and then from
// the environment, which wins.
type Config struct {
	AccessSecret  string        `yaml:"jwt_access_secret"`  // Required: HS256 secret for access tokens (>= 32 bytes)
	RefreshSecret string        `yaml:"jwt_refresh_secret"` // Required: HS256 secret for refresh tokens (>= 32 bytes)
	AccessTTL     time.Duration `yaml:"jwt_access_expiry"`  // Access token lifetime (default: 15m)
	RefreshTTL    time.Duration `yaml:"jwt_refresh_expiry"` // Refresh token lifetime (default: 168h)

	BcryptCost        int           `yaml:"bcrypt_cost"`           // default: 12
	ResetTTL          time.Duration `yaml:"password_reset_ttl"`    // default: 1h
	RotateOnRefresh   bool          `yaml:"refresh_rotate_on_use"` // default: false
	AllowRegisterRole bool          `yaml:"register_allow_role"`   // default: true

	DatabaseDriver string `yaml:"database_driver"` // sqlite or postgres (default: sqlite)
	DatabaseFile   string `yaml:"database_file"`   // SQLite file (default: gymauth.db)
	DatabaseURL    string `yaml:"database_url"`    // Postgres DSN

	ClientURL   string `yaml:"client_url"`   // Prefix of password reset links
	AppName     string `yaml:"app_name"`     // Shown in emails (default: Gym)
	MailDriver  string `yaml:"mail_driver"`  // log or rabbitmq (default: log)
	MailFrom    string `yaml:"mail_from"`    // default: no-reply@gym.local
	MailQueue   string `yaml:"mail_queue"`   // default: email_jobs
	RabbitMQURL string `yaml:"rabbitmq_url"` // Required for the rabbitmq mail driver

	RateLimitBackend string `yaml:"ratelimit_backend"` // memory or redis (default: memory)
	RedisAddr        string `yaml:"redis_addr"`        // Required for the redis backend

	Env                  string        `yaml:"env"`                   // dev, staging, prod (default: dev)
	LogLevel             string        `yaml:"log_level"`             // default: info
	LogFormat            string        `yaml:"log_format"`            // json or text (default: json)
	Port                 int           `yaml:"port"`                  // default: 8080
	ShutdownGracePeriod  time.Duration `yaml:"shutdown_grace_period"` // default: 10s
	HousekeepingInterval time.Duration `yaml:"housekeeping_interval"` // default: 1h

	// RateLimits come from RATELIMIT_{STRICT,MODERATE,LENIENT,PUBLIC}_*.
	RateLimits httpapi.RateLimits `yaml:"-"`
}

// DefaultConfig is the configuration with nothing set.
func DefaultConfig() Config {
	return Config{
		AccessTTL:            jwtx.DefaultAccessTokenTTL,
		RefreshTTL:           jwtx.DefaultRefreshTokenTTL,
		BcryptCost:           12,
		ResetTTL:             time.Hour,
		AllowRegisterRole:    true,
		DatabaseDriver:       "sqlite",
		DatabaseFile:         "gymauth.db",
		ClientURL:            "http://localhost:3000",
		AppName:              "Gym",
		MailDriver:           "log",
		MailFrom:             "no-reply@gym.local",
		MailQueue:            "email_jobs",
		RateLimitBackend:     "memory",
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: time.Hour,
		RateLimits:           httpapi.DefaultRateLimits(),
	}
}

// LoadConfig builds the configuration. It does not validate it.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv("GYM_CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.AccessSecret = getEnvOrDefault("JWT_ACCESS_SECRET", cfg.AccessSecret)
	cfg.RefreshSecret = getEnvOrDefault("JWT_REFRESH_SECRET", cfg.RefreshSecret)
	cfg.AccessTTL = getEnvDurationOrDefault("JWT_ACCESS_EXPIRY", cfg.AccessTTL)
	cfg.RefreshTTL = getEnvDurationOrDefault("JWT_REFRESH_EXPIRY", cfg.RefreshTTL)
	cfg.BcryptCost = getEnvIntOrDefault("BCRYPT_COST", cfg.BcryptCost)
	cfg.ResetTTL = getEnvDurationOrDefault("PASSWORD_RESET_TTL", cfg.ResetTTL)
	cfg.RotateOnRefresh = getEnvBoolOrDefault("REFRESH_ROTATE_ON_USE", cfg.RotateOnRefresh)
	cfg.AllowRegisterRole = getEnvBoolOrDefault("REGISTER_ALLOW_ROLE", cfg.AllowRegisterRole)
	cfg.DatabaseDriver = getEnvOrDefault("DATABASE_DRIVER", cfg.DatabaseDriver)
	cfg.DatabaseFile = getEnvOrDefault("DATABASE_FILE", cfg.DatabaseFile)
	cfg.DatabaseURL = getEnvOrDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.ClientURL = getEnvOrDefault("CLIENT_URL", cfg.ClientURL)
	cfg.AppName = getEnvOrDefault("APP_NAME", cfg.AppName)
	cfg.MailDriver = getEnvOrDefault("MAIL_DRIVER", cfg.MailDriver)
	cfg.MailFrom = getEnvOrDefault("MAIL_FROM", cfg.MailFrom)
	cfg.MailQueue = getEnvOrDefault("MAIL_QUEUE", cfg.MailQueue)
	cfg.RabbitMQURL = getEnvOrDefault("RABBITMQ_URL", cfg.RabbitMQURL)
	cfg.RateLimitBackend = getEnvOrDefault("RATELIMIT_BACKEND", cfg.RateLimitBackend)
	cfg.RedisAddr = getEnvOrDefault("REDIS_ADDR", cfg.RedisAddr)
	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.Port = getEnvIntOrDefault("PORT", cfg.Port)
	cfg.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", cfg.ShutdownGracePeriod)
	cfg.HousekeepingInterval = getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", cfg.HousekeepingInterval)

	cfg.RateLimits = httpapi.RateLimits{
		Strict:   httpx.ParseRateLimitFromEnv("STRICT", cfg.RateLimits.Strict),
		Moderate: httpx.ParseRateLimitFromEnv("MODERATE", cfg.RateLimits.Moderate),
		Lenient:  httpx.ParseRateLimitFromEnv("LENIENT", cfg.RateLimits.Lenient),
		Public:   httpx.ParseRateLimitFromEnv("PUBLIC", cfg.RateLimits.Public),
	}

	return cfg, nil
}

// Dev reports whether internal error detail may be shown to clients.
func (c Config) Dev() bool { return c.Env == "dev" }

// Validate checks that required settings are present and consistent.
func (c Config) Validate() error {
	var errs []error

	if len(c.AccessSecret) < jwtx.MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_ACCESS_SECRET must be at least %d characters", jwtx.MinSecretLength))
	}
	if len(c.RefreshSecret) < jwtx.MinSecretLength {
		errs = append(errs, fmt.Errorf("JWT_REFRESH_SECRET must be at least %d characters", jwtx.MinSecretLength))
	}
	if c.AccessSecret != "" && c.AccessSecret == c.RefreshSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 || c.ResetTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}

	switch c.DatabaseDriver {
	case "sqlite":
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("DATABASE_FILE is required for the sqlite driver"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver))
	}

	switch c.MailDriver {
	case "log":
	case "rabbitmq":
		if c.RabbitMQURL == "" {
			errs = append(errs, errors.New("RABBITMQ_URL is required for the rabbitmq mail driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_DRIVER %q", c.MailDriver))
	}

	switch c.RateLimitBackend {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis rate limit backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown RATELIMIT_BACKEND %q", c.RateLimitBackend))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}

	return errors.Join(errs...)
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// loadFile overlays the YAML file at path onto cfg. ${VAR} references are
// replaced with the environment value, or nothing when unset.
func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	expanded := envRef.ReplaceAllStringFunc(string(raw), func(m string) string {
		return os.Getenv(envRef.FindStringSubmatch(m)[1])
	})

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
