package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	// EmptyDayRetain keeps a day summary after its last note is deleted.
	EmptyDayRetain = "retain"
	// EmptyDayClear deletes the summary once the day has no notes.
	EmptyDayClear = "clear"

	ConflictLastWriterWins = "last-writer-wins"
	ConflictCompareAndSwap = "compare-and-swap"
)

type Config struct {
	Port string `yaml:"port"`

	DBDriver   string `yaml:"db_driver"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBHost     string `yaml:"db_host"`
	DBName     string `yaml:"db_name"`
	SQLitePath string `yaml:"sqlite_path"`

	JWTSecret    string        `yaml:"jwt_secret"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	SecureCookie bool          `yaml:"secure_cookie"`

	OpenAIKey       string        `yaml:"openai_key"`
	OpenAIModel     string        `yaml:"openai_model"`
	OpenAIBaseURL   string        `yaml:"openai_base_url"`
	AnalyzerTimeout time.Duration `yaml:"analyzer_timeout"`

	// Summary synchronization policies
	EmptyDayPolicy    string `yaml:"empty_day_policy"`
	ConflictPolicy    string `yaml:"conflict_policy"`
	SyncRetries       int    `yaml:"sync_retries"`
	ReconcileSchedule string `yaml:"reconcile_schedule"`

	LogLevel string `yaml:"log_level"`
}

// Defaults returns a config suitable for local development.
func Defaults() *Config {
	return &Config{
		Port:              "8080",
		DBDriver:          DriverSQLite,
		DBHost:            "127.0.0.1:3306",
		DBName:            "hopperhelps",
		SQLitePath:        "data/hopperhelps.db",
		SessionTTL:        time.Hour,
		OpenAIModel:       "gpt-4o-mini",
		AnalyzerTimeout:   30 * time.Second,
		EmptyDayPolicy:    EmptyDayRetain,
		ConflictPolicy:    ConflictLastWriterWins,
		SyncRetries:       3,
		ReconcileSchedule: "@every 1m",
		LogLevel:          "info",
	}
}

// LoadConfig applies defaults, then the YAML file at path (if path is not
// empty), then a .env file in the working directory, then the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")

	setString(&c.DBDriver, "DB_DRIVER")
	setString(&c.DBUser, "DB_USER")
	setString(&c.DBPassword, "DB_PASSWORD")
	setString(&c.DBHost, "DB_HOST")
	setString(&c.DBName, "DB_NAME")
	setString(&c.SQLitePath, "SQLITE_PATH")

	setString(&c.JWTSecret, "JWT_SECRET")
	if err := setDuration(&c.SessionTTL, "SESSION_TTL"); err != nil {
		return err
	}
	if v := os.Getenv("SECURE_COOKIE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SECURE_COOKIE: %w", err)
		}
		c.SecureCookie = b
	}

	setString(&c.OpenAIKey, "OPENAI_KEY")
	setString(&c.OpenAIModel, "OPENAI_MODEL")
	setString(&c.OpenAIBaseURL, "OPENAI_BASE_URL")
	if err := setDuration(&c.AnalyzerTimeout, "ANALYZER_TIMEOUT"); err != nil {
		return err
	}

	setString(&c.EmptyDayPolicy, "EMPTY_DAY_POLICY")
	setString(&c.ConflictPolicy, "CONFLICT_POLICY")
	if v := os.Getenv("SYNC_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SYNC_RETRIES: %w", err)
		}
		c.SyncRetries = n
	}
	setString(&c.ReconcileSchedule, "RECONCILE_SCHEDULE")

	setString(&c.LogLevel, "LOG_LEVEL")
	return nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("unknown db driver %q", c.DBDriver)
	}
	switch c.EmptyDayPolicy {
	case EmptyDayRetain, EmptyDayClear:
	default:
		return fmt.Errorf("unknown empty day policy %q", c.EmptyDayPolicy)
	}
	switch c.ConflictPolicy {
	case ConflictLastWriterWins, ConflictCompareAndSwap:
	default:
		return fmt.Errorf("unknown conflict policy %q", c.ConflictPolicy)
	}
	if c.SyncRetries < 0 {
		return fmt.Errorf("sync retries must not be negative")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
