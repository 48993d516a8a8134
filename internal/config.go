package internal

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Audit         AuditConfig         `mapstructure:"audit"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

// SecurityConfig carries the password policy, account lockout and session
// settings. Lockout duration doubles as the sliding window for counting
// failed attempts.
type SecurityConfig struct {
	SessionSecret   string        `mapstructure:"session_secret" validate:"required,min=32"`
	SessionDuration time.Duration `mapstructure:"session_duration"`
	BCryptCost      int           `mapstructure:"bcrypt_cost" validate:"min=10,max=15"`

	MinPasswordLength           int  `mapstructure:"min_password_length"`
	MaxPasswordLength           int  `mapstructure:"max_password_length"`
	PasswordRequireUppercase    bool `mapstructure:"password_require_uppercase"`
	PasswordRequireLowercase    bool `mapstructure:"password_require_lowercase"`
	PasswordRequireDigits       bool `mapstructure:"password_require_digits"`
	PasswordRequireSpecialChars bool `mapstructure:"password_require_special_chars"`

	AccountLockoutThreshold int           `mapstructure:"account_lockout_threshold"`
	AccountLockoutDuration  time.Duration `mapstructure:"account_lockout_duration"`
}

// RateLimitConfig holds per-endpoint-class limits in "N per minute|hour|day"
// form, matching the strings the ops team already uses.
type RateLimitConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Default string `mapstructure:"default"`
	Login   string `mapstructure:"login"`
	API     string `mapstructure:"api"`
}

type AuditConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ----------------- DEFAULTS -----------------

// ApplyDefaults fills zero-valued security settings so a sparse config file
// still produces a safe policy.
func (c *Config) ApplyDefaults() {
	if c.Security.MinPasswordLength == 0 {
		c.Security.MinPasswordLength = 8
	}
	if c.Security.MaxPasswordLength == 0 {
		c.Security.MaxPasswordLength = 128
	}
	if c.Security.AccountLockoutThreshold == 0 {
		c.Security.AccountLockoutThreshold = 5
	}
	if c.Security.AccountLockoutDuration == 0 {
		c.Security.AccountLockoutDuration = 900 * time.Second
	}
	if c.Security.SessionDuration == 0 {
		c.Security.SessionDuration = 8 * time.Hour
	}
	if c.Security.BCryptCost == 0 {
		c.Security.BCryptCost = 12
	}
	if c.RateLimit.Default == "" {
		c.RateLimit.Default = "100 per minute"
	}
	if c.RateLimit.Login == "" {
		c.RateLimit.Login = "5 per minute"
	}
	if c.RateLimit.API == "" {
		c.RateLimit.API = "60 per minute"
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds a Config from environment variables, used for
// container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("BASE_URL", ""),
			ReadHeaderTimeout: time.Duration(getEnvAsInt("READ_HEADER_TIMEOUT_SECONDS", 5)) * time.Second,
			ReadTimeout:       time.Duration(getEnvAsInt("READ_TIMEOUT_SECONDS", 15)) * time.Second,
			WriteTimeout:      time.Duration(getEnvAsInt("WRITE_TIMEOUT_SECONDS", 15)) * time.Second,
			IdleTimeout:       time.Duration(getEnvAsInt("IDLE_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Database: DatabaseConfig{
			Source:       getEnv("DATABASE_URL", ""),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		Security: SecurityConfig{
			SessionSecret:               getEnv("SESSION_SECRET", ""),
			BCryptCost:                  getEnvAsInt("BCRYPT_COST", 12),
			MinPasswordLength:           getEnvAsInt("MIN_PASSWORD_LENGTH", 8),
			MaxPasswordLength:           getEnvAsInt("MAX_PASSWORD_LENGTH", 128),
			PasswordRequireUppercase:    getEnvAsBool("PASSWORD_REQUIRE_UPPERCASE", true),
			PasswordRequireLowercase:    getEnvAsBool("PASSWORD_REQUIRE_LOWERCASE", true),
			PasswordRequireDigits:       getEnvAsBool("PASSWORD_REQUIRE_DIGITS", true),
			PasswordRequireSpecialChars: getEnvAsBool("PASSWORD_REQUIRE_SPECIAL_CHARS", true),
			AccountLockoutThreshold:     getEnvAsInt("ACCOUNT_LOCKOUT_THRESHOLD", 5),
			AccountLockoutDuration:      time.Duration(getEnvAsInt("ACCOUNT_LOCKOUT_DURATION", 900)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Default: getEnv("RATE_LIMIT_DEFAULT", "100 per minute"),
			Login:   getEnv("RATE_LIMIT_LOGIN", "5 per minute"),
			API:     getEnv("RATE_LIMIT_API", "60 per minute"),
		},
		Audit: AuditConfig{
			Enabled: getEnvAsBool("AUDIT_LOG_ENABLED", true),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.SessionSecret) < 32 {
		return errors.New("session secret must be at least 32 characters")
	}
	if c.MinPasswordLength < 1 {
		return errors.New("min_password_length must be positive")
	}
	if c.MaxPasswordLength < c.MinPasswordLength {
		return errors.New("max_password_length must be >= min_password_length")
	}
	if c.AccountLockoutThreshold < 1 {
		return errors.New("account_lockout_threshold must be positive")
	}
	if c.AccountLockoutDuration <= 0 {
		return errors.New("account_lockout_duration must be positive")
	}
	return nil
}
