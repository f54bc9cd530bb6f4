package staking

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/thrylos-labs/stakeledger/amount"
)

// RewardRate pays Numerator/Denominator reward units per staked unit for
// every full Period a position stays open, accrued linearly per second.
type RewardRate struct {
	Numerator   uint64
	Denominator uint64
	Period      time.Duration
}

func NewRewardRate(numerator, denominator uint64, period time.Duration) (RewardRate, error) {
	r := RewardRate{Numerator: numerator, Denominator: denominator, Period: period}
	return r, r.Validate()
}

func (r RewardRate) Validate() error {
	if r.Denominator == 0 {
		return errors.Wrap(ErrInvalidRate, "denominator is zero")
	}
	if r.Period < time.Second || r.Period%time.Second != 0 {
		return errors.Wrapf(ErrInvalidRate, "period %s is not a whole number of seconds", r.Period)
	}
	return nil
}

func (r RewardRate) PeriodSeconds() int64 {
	return int64(r.Period / time.Second)
}

// RewardFor returns floor(amt * num * elapsed / (den * period)) with elapsed
// truncated to whole seconds. Negative elapsed counts as zero.
func (r RewardRate) RewardFor(amt amount.Amount, elapsed time.Duration) (amount.Amount, error) {
	return r.rewardForSeconds(amt, int64(elapsed/time.Second))
}

func (r RewardRate) rewardForSeconds(amt amount.Amount, secs int64) (amount.Amount, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if secs <= 0 || amt == 0 || r.Numerator == 0 {
		return 0, nil
	}

	num := uint256.NewInt(uint64(amt))
	if _, overflow := num.MulOverflow(num, uint256.NewInt(r.Numerator)); overflow {
		return 0, ErrOverflow
	}
	if _, overflow := num.MulOverflow(num, uint256.NewInt(uint64(secs))); overflow {
		return 0, ErrOverflow
	}

	den := uint256.NewInt(r.Denominator)
	den.Mul(den, uint256.NewInt(uint64(r.PeriodSeconds())))

	reward := new(uint256.Int).Div(num, den)
	if !reward.IsUint64() {
		return 0, errors.Wrapf(ErrOverflow, "reward for %d over %ds", amt, secs)
	}
	return amount.Amount(reward.Uint64()), nil
}
