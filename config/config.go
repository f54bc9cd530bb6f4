package config

import (
	"encoding/json"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Environment variables recognised by ApplyEnv.
const (
	EnvListenAddr      = "STAKING_LISTEN_ADDR"
	EnvDataDir         = "STAKING_DATA_DIR"
	EnvLogMode         = "STAKING_LOG_MODE"
	EnvLogFile         = "STAKING_LOG_FILE"
	EnvJWTSecret       = "STAKING_JWT_SECRET"
	EnvAllowedOrigins  = "STAKING_ALLOWED_ORIGINS"
	EnvRateNumerator   = "STAKING_RATE_NUMERATOR"
	EnvRateDenominator = "STAKING_RATE_DENOMINATOR"
	EnvRewardPeriod    = "STAKING_REWARD_PERIOD_SECONDS"
	EnvCustodyAccount  = "STAKING_CUSTODY_ACCOUNT"
	EnvRewardReserve   = "STAKING_REWARD_RESERVE"
	EnvCacheSize       = "STAKING_CACHE_SIZE"
	EnvLockStripes     = "STAKING_LOCK_STRIPES"
	EnvInMemory        = "STAKING_IN_MEMORY"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	ListenAddr          string            `json:"LISTEN_ADDR"`
	DataDir             string            `json:"DATA_DIR"`
	InMemory            bool              `json:"IN_MEMORY"`
	LogMode             string            `json:"LOG_MODE"`
	LogFile             string            `json:"LOG_FILE"`
	JWTSecret           string            `json:"JWT_SECRET"`
	AllowedOrigins      []string          `json:"ALLOWED_ORIGINS"`
	RateNumerator       uint64            `json:"RATE_NUMERATOR"`
	RateDenominator     uint64            `json:"RATE_DENOMINATOR"`
	RewardPeriodSeconds int64             `json:"REWARD_PERIOD_SECONDS"`
	CustodyAccount      string            `json:"CUSTODY_ACCOUNT"`
	RewardReserve       uint64            `json:"REWARD_RESERVE"`
	Genesis             map[string]uint64 `json:"GENESIS"`
	CacheSize           int               `json:"CACHE_SIZE"`
	LockStripes         int               `json:"LOCK_STRIPES"`
}

// Default returns a configuration usable for a local development node.
func Default() *Config {
	return &Config{
		ListenAddr:          DefaultListenAddr,
		DataDir:             DefaultDataDir,
		LogMode:             DefaultLogMode,
		AllowedOrigins:      []string{"http://localhost:3000"},
		RateNumerator:       DefaultRateNumerator,
		RateDenominator:     DefaultRateDenominator,
		RewardPeriodSeconds: RewardDistributionTimeInterval,
		CustodyAccount:      DefaultCustody,
		Genesis:             make(map[string]uint64),
		CacheSize:           DefaultCacheSize,
		LockStripes:         DefaultLockStripes,
	}
}

// LoadConfig decodes a JSON file over the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	// Open the JSON file
	configFile, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer configFile.Close()

	// Decode the JSON file into `Config`
	if err := json.NewDecoder(configFile).Decode(config); err != nil {
		return nil, errors.Wrapf(err, "decode %s", configPath)
	}
	if config.Genesis == nil {
		config.Genesis = make(map[string]uint64)
	}

	return config, nil
}

// Load builds the node configuration. An optional JSON file is read first,
// then an optional .env file is loaded and environment variables override
// individual fields. The result is validated.
func Load(envPath, configPath string) (*Config, error) {
	config := Default()
	if configPath != "" {
		c, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		config = c
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, errors.Wrapf(err, "load env file %s", envPath)
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields with any STAKING_* variables that are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvLogMode); v != "" {
		c.LogMode = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv(EnvCustodyAccount); v != "" {
		c.CustodyAccount = v
	}
	if v := os.Getenv(EnvAllowedOrigins); v != "" {
		c.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv(EnvInMemory); v != "" {
		c.InMemory = v == "true"
	}

	var err error
	if c.RateNumerator, err = envUint(EnvRateNumerator, c.RateNumerator); err != nil {
		return err
	}
	if c.RateDenominator, err = envUint(EnvRateDenominator, c.RateDenominator); err != nil {
		return err
	}
	if c.RewardReserve, err = envUint(EnvRewardReserve, c.RewardReserve); err != nil {
		return err
	}
	period, err := envUint(EnvRewardPeriod, uint64(c.RewardPeriodSeconds))
	if err != nil {
		return err
	}
	c.RewardPeriodSeconds = int64(period)

	cacheSize, err := envUint(EnvCacheSize, uint64(c.CacheSize))
	if err != nil {
		return err
	}
	c.CacheSize = int(cacheSize)

	stripes, err := envUint(EnvLockStripes, uint64(c.LockStripes))
	if err != nil {
		return err
	}
	c.LockStripes = int(stripes)
	return nil
}

func envUint(key string, fallback uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidConfig, "%s=%q", key, v)
	}
	return n, nil
}

// Validate reports the first inconsistency in the configuration.
func (c *Config) Validate() error {
	if c.RateDenominator == 0 {
		return errors.Wrap(ErrInvalidConfig, "rate denominator must be positive")
	}
	if c.RewardPeriodSeconds <= 0 {
		return errors.Wrap(ErrInvalidConfig, "reward period must be positive")
	}
	if c.RewardPeriodSeconds > MaxRewardPeriodSeconds {
		return errors.Wrapf(ErrInvalidConfig, "reward period above %d seconds", MaxRewardPeriodSeconds)
	}
	if c.CustodyAccount == "" {
		return errors.Wrap(ErrInvalidConfig, "custody account is required")
	}
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "listen address %q: %v", c.ListenAddr, err)
	}
	if !c.InMemory && c.DataDir == "" {
		return errors.Wrap(ErrInvalidConfig, "data directory is required")
	}
	if c.CacheSize <= 0 {
		return errors.Wrap(ErrInvalidConfig, "cache size must be positive")
	}
	if c.LockStripes <= 0 {
		return errors.Wrap(ErrInvalidConfig, "lock stripes must be positive")
	}
	return nil
}
