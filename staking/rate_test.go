package staking

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrylos-labs/stakeledger/amount"
)

const day = 24 * time.Hour

func TestRewardRateValidate(t *testing.T) {
	_, err := NewRewardRate(1, 0, day)
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = NewRewardRate(1, 1, 1500*time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = NewRewardRate(1, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidRate)

	r, err := NewRewardRate(0, 5, time.Second)
	require.NoError(t, err)
	assert.EqualValues(t, 1, r.PeriodSeconds())
}

func TestRewardForFloors(t *testing.T) {
	r := RewardRate{Numerator: 1, Denominator: 1000, Period: day}

	cases := []struct {
		amt     amount.Amount
		elapsed time.Duration
		want    amount.Amount
	}{
		{1000, day, 1},
		{999, day, 0},
		{2000, day / 2, 1},
		{1999, day / 2, 0},
		{1000, 3 * day, 3},
		{1000, day + 999*time.Millisecond, 1},
		{1000, -time.Hour, 0},
		{0, day, 0},
	}
	for _, c := range cases {
		got, err := r.RewardFor(c.amt, c.elapsed)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "amount %d elapsed %s", c.amt, c.elapsed)
	}
}

func TestRewardForMonotonic(t *testing.T) {
	r := RewardRate{Numerator: 7, Denominator: 3, Period: time.Hour}
	const amt = amount.Amount(12345)

	zero, err := r.RewardFor(amt, 0)
	require.NoError(t, err)
	assert.Zero(t, zero)

	prev := zero
	for s := time.Duration(0); s <= 3*time.Hour; s += 17 * time.Second {
		got, err := r.RewardFor(amt, s)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, uint64(got), uint64(prev), "elapsed %s", s)
		prev = got
	}
}

func TestRewardForWideIntermediate(t *testing.T) {
	// amt*num overflows 64 bits but the final reward fits
	r := RewardRate{Numerator: math.MaxUint64, Denominator: math.MaxUint64, Period: time.Second}
	got, err := r.RewardFor(amount.Max, time.Second)
	require.NoError(t, err)
	assert.Equal(t, amount.Max, got)
}

func TestRewardForOverflow(t *testing.T) {
	r := RewardRate{Numerator: 2, Denominator: 1, Period: time.Second}
	_, err := r.RewardFor(amount.Max, time.Second)
	assert.ErrorIs(t, err, ErrOverflow)
}
