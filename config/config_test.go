package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, int64(86400), c.RewardPeriodSeconds)
	assert.Equal(t, uint64(1), c.RateNumerator)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{
		"LISTEN_ADDR": "127.0.0.1:9090",
		"RATE_NUMERATOR": 5,
		"RATE_DENOMINATOR": 1000,
		"GENESIS": {"alice": 100}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", c.ListenAddr)
	assert.Equal(t, uint64(5), c.RateNumerator)
	assert.Equal(t, uint64(1000), c.RateDenominator)
	assert.Equal(t, uint64(100), c.Genesis["alice"])
	// untouched fields keep their defaults
	assert.Equal(t, int64(RewardDistributionTimeInterval), c.RewardPeriodSeconds)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("STAKING_RATE_DENOMINATOR=365\n"), 0o600))

	t.Setenv(EnvListenAddr, "0.0.0.0:7000")
	t.Setenv(EnvAllowedOrigins, "https://a.example,https://b.example")
	t.Setenv(EnvInMemory, "true")
	// godotenv never overrides variables that are already set
	t.Cleanup(func() { os.Unsetenv(EnvRateDenominator) })

	c, err := Load(envPath, "")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", c.ListenAddr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.True(t, c.InMemory)
	assert.Equal(t, uint64(365), c.RateDenominator)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv(EnvRateNumerator, "abc")
	_, err := Load("", "")
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero denominator", mutate: func(c *Config) { c.RateDenominator = 0 }},
		{name: "zero period", mutate: func(c *Config) { c.RewardPeriodSeconds = 0 }},
		{name: "period past duration range", mutate: func(c *Config) { c.RewardPeriodSeconds = MaxRewardPeriodSeconds + 1 }},
		{name: "no custody", mutate: func(c *Config) { c.CustodyAccount = "" }},
		{name: "bad listen", mutate: func(c *Config) { c.ListenAddr = "nope" }},
		{name: "no data dir", mutate: func(c *Config) { c.DataDir = "" }},
		{name: "no cache", mutate: func(c *Config) { c.CacheSize = 0 }},
		{name: "no stripes", mutate: func(c *Config) { c.LockStripes = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.True(t, errors.Is(c.Validate(), ErrInvalidConfig))
		})
	}
}
