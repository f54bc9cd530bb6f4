package config

import (
	"math"
	"time"
)

const (
	// Token Related
	NanoPerThrylos = 1e9

	// Staking Related
	DefaultRateNumerator   = 1
	DefaultRateDenominator = 1

	// Time Related
	RewardDistributionTimeInterval = 24 * 60 * 60 // one day in seconds
	// longest period that still fits a time.Duration
	MaxRewardPeriodSeconds = math.MaxInt64 / int64(time.Second)

	// Node Related
	DefaultListenAddr  = "localhost:8080"
	DefaultDataDir     = "./data"
	DefaultLogMode     = "development"
	DefaultCacheSize   = 1024
	DefaultLockStripes = 64
	DefaultCustody     = "staking_pool"
)
