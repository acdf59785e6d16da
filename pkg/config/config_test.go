package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 100, c.Analysis.HistoryBars)
	assert.Equal(t, 7*24*time.Hour, c.Analysis.NewsLookback)
	assert.Equal(t, []string{"localhost:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "sqlite", c.Backend.Type)
	assert.Equal(t, 1, c.Reasoning.Attempts)
	assert.NoError(t, c.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
environment: production
server:
  port: 9090
backend:
  type: none
analysis:
  timeout: 5s
providers:
  finnhub:
    api_key: file-key
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 5*time.Second, c.Analysis.Timeout)
	assert.Equal(t, "file-key", c.Providers.Finnhub.APIKey)
	// untouched sections keep their defaults
	assert.Equal(t, 100, c.Analysis.HistoryBars)
}

func TestApplyEnv(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	env := map[string]string{
		"FINNHUB_API_KEY":      "fh",
		"ALPHAVANTAGE_API_KEY": "av",
		"WATCHLIST":            "aapl, msft,,",
		"KAFKA_BROKERS":        "k1:9092,k2:9092",
		"HTTP_PORT":            "not-a-port",
	}
	c.applyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "fh", c.Providers.Finnhub.APIKey)
	assert.Equal(t, "av", c.Providers.AlphaVantage.APIKey)
	assert.Equal(t, []string{"aapl", "msft"}, c.Scanner.Watchlist)
	assert.True(t, c.Scanner.Enabled)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, 8080, c.Server.Port)
}

func TestValidate(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	c.Backend.Type = "postgres"
	assert.Error(t, c.Validate())

	c.Backend.Type = "none"
	c.Reasoning.Enabled = true
	assert.Error(t, c.Validate())

	c.Reasoning.APIKey = "k"
	assert.NoError(t, c.Validate())

	c.Analysis.HistoryBars = 10
	assert.Error(t, c.Validate())
}
