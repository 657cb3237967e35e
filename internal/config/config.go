package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	CORSHosts []string

	DB          DatabaseConfig
	Redis       RedisConfig
	Catalog     CatalogConfig
	Persistence PersistenceConfig
	Session     SessionConfig
	Document    DocumentConfig
	Archive     ArchiveConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// CatalogConfig points at the static vendor data (vendors, catalogs,
// compatibility rules and kits).
type CatalogConfig struct {
	DataDir string
}

// PersistenceConfig controls the write-behind of quotations.
type PersistenceConfig struct {
	SaveDebounce time.Duration
	CacheTTL     time.Duration
	WriteTimeout time.Duration
}

// SessionConfig controls the lifetime of in-memory configuration sessions.
type SessionConfig struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

// DocumentConfig holds defaults printed on quotation documents.
type DocumentConfig struct {
	ValidDays    int
	PaymentTerms string
}

// ArchiveConfig contains the optional S3-compatible bucket where exported
// quotation documents are archived. Archiving is disabled when Bucket is empty.
type ArchiveConfig struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether document archiving is configured.
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSHosts = getEnvList("CORS_ALLOWED_HOSTS", "localhost:3000,127.0.0.1:3000")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	cfg.Catalog = CatalogConfig{
		DataDir: getEnv("DATA_DIR", "data"),
	}

	cfg.Document = DocumentConfig{
		ValidDays:    getEnvInt("QUOTE_VALID_DAYS", 30),
		PaymentTerms: getEnv("QUOTE_PAYMENT_TERMS", "50% deposit, 50% before delivery"),
	}

	// Document archive (S3 compatible, optional)
	cfg.Archive = ArchiveConfig{
		Region:          getEnv("S3_REGION", "eu-central-1"),
		Bucket:          getEnv("S3_BUCKET", ""),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	// Durations
	var err error
	if cfg.Persistence.SaveDebounce, err = parseDurationEnv("SAVE_DEBOUNCE", "1s"); err != nil {
		return nil, fmt.Errorf("invalid SAVE_DEBOUNCE: %w", err)
	}
	if cfg.Persistence.CacheTTL, err = parseDurationEnv("CACHE_TTL", "720h"); err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	if cfg.Persistence.WriteTimeout, err = parseDurationEnv("SAVE_TIMEOUT", "5s"); err != nil {
		return nil, fmt.Errorf("invalid SAVE_TIMEOUT: %w", err)
	}
	if cfg.Session.IdleTimeout, err = parseDurationEnv("SESSION_IDLE_TIMEOUT", "2h"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_IDLE_TIMEOUT: %w", err)
	}
	if cfg.Session.SweepInterval, err = parseDurationEnv("SESSION_SWEEP_INTERVAL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_SWEEP_INTERVAL: %w", err)
	}

	// Basic validation for DB parameters — keeps messages concise and helpful.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	if cfg.Document.ValidDays <= 0 {
		return nil, errors.New("QUOTE_VALID_DAYS must be positive")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvList splits a comma separated environment variable, dropping empty entries.
func getEnvList(key, def string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, def), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
