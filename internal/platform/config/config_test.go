package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, "300-M", cfg.RateLimit)
	assert.Equal(t, time.Hour, cfg.JWTExpiryDuration)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)

	ledger := cfg.Ledger()
	assert.True(t, ledger.BalanceTolerance.Equal(decimal.RequireFromString("0.01")))
	assert.Equal(t, "JE000042", ledger.FormatJournalNumber(42))
	assert.Equal(t, "USD", ledger.DefaultCurrency)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("BALANCE_TOLERANCE", "0.005")
	t.Setenv("JOURNAL_NUMBER_PREFIX", "GJ-")
	t.Setenv("JOURNAL_NUMBER_WIDTH", "4")
	t.Setenv("DEFAULT_CURRENCY", "eur")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "GJ-0007", cfg.Ledger().FormatJournalNumber(7))
	assert.Equal(t, "EUR", cfg.DefaultCurrency)
	assert.True(t, cfg.BalanceTolerance.Equal(decimal.RequireFromString("0.005")))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"STORAGE_DRIVER": "postgres", "PGSQL_URL": ""}},
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "mongo"}},
		{"bad tolerance", map[string]string{"STORAGE_DRIVER": "memory", "BALANCE_TOLERANCE": "abc"}},
		{"zero tolerance", map[string]string{"STORAGE_DRIVER": "memory", "BALANCE_TOLERANCE": "0"}},
		{"bad width", map[string]string{"STORAGE_DRIVER": "memory", "JOURNAL_NUMBER_WIDTH": "0"}},
		{"production without secret", map[string]string{"STORAGE_DRIVER": "memory", "IS_PRODUCTION": "true", "JWT_SECRET": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
