package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL        string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	StorageDriver      string
	MigrationsPath     string
	AutoMigrate        bool
	JWTSecret          string
	JWTIssuer          string
	JWTExpiryDuration  time.Duration
	RateLimit          string // ulule/limiter format, e.g. "300-M"
	RedisURL           string // Optional limiter store
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration

	// Ledger settings
	BalanceTolerance    decimal.Decimal
	JournalNumberPrefix string
	JournalNumberWidth  int
	DefaultCurrency     string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "ledgerbook")
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("BALANCE_TOLERANCE", "0.01")
	v.SetDefault("JOURNAL_NUMBER_PREFIX", "JE")
	v.SetDefault("JOURNAL_NUMBER_WIDTH", 6)
	v.SetDefault("DEFAULT_CURRENCY", "USD")

	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:         v.GetString("PGSQL_URL"),
		Port:                v.GetString("PORT"),
		IsProduction:        v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:       v.GetBool("ENABLE_DB_CHECK"),
		StorageDriver:       strings.ToLower(v.GetString("STORAGE_DRIVER")),
		MigrationsPath:      v.GetString("MIGRATIONS_PATH"),
		AutoMigrate:         v.GetBool("AUTO_MIGRATE"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTIssuer:           v.GetString("JWT_ISSUER"),
		RateLimit:           v.GetString("RATE_LIMIT"),
		RedisURL:            v.GetString("REDIS_URL"),
		CORSAllowedOrigins:  splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		JournalNumberPrefix: v.GetString("JOURNAL_NUMBER_PREFIX"),
		JournalNumberWidth:  v.GetInt("JOURNAL_NUMBER_WIDTH"),
		DefaultCurrency:     strings.ToUpper(v.GetString("DEFAULT_CURRENCY")),
	}

	var err error
	if cfg.JWTExpiryDuration, err = time.ParseDuration(v.GetString("JWT_EXPIRY_DURATION")); err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY_DURATION: %w", err)
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT")); err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	if cfg.BalanceTolerance, err = decimal.NewFromString(v.GetString("BALANCE_TOLERANCE")); err != nil {
		return nil, fmt.Errorf("invalid BALANCE_TOLERANCE: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER is %s", StoragePostgres)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.JWTSecret == "" {
		if c.IsProduction {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		c.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	if !c.BalanceTolerance.IsPositive() {
		return fmt.Errorf("BALANCE_TOLERANCE must be positive")
	}
	if c.JournalNumberWidth < 1 || c.JournalNumberWidth > 18 {
		return fmt.Errorf("JOURNAL_NUMBER_WIDTH must be between 1 and 18")
	}
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("DEFAULT_CURRENCY must be a three letter ISO 4217 code")
	}
	return nil
}

// Ledger returns the settings injected into the posting engine and reporters.
func (c *Config) Ledger() domain.LedgerSettings {
	return domain.LedgerSettings{
		BalanceTolerance:    c.BalanceTolerance,
		JournalNumberPrefix: c.JournalNumberPrefix,
		JournalNumberWidth:  c.JournalNumberWidth,
		DefaultCurrency:     c.DefaultCurrency,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
