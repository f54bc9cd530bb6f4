package staking

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/thrylos-labs/stakeledger/amount"
	"github.com/thrylos-labs/stakeledger/balance"
	"github.com/thrylos-labs/stakeledger/config"
	"github.com/thrylos-labs/stakeledger/logging"
	"github.com/thrylos-labs/stakeledger/store"
	"github.com/thrylos-labs/stakeledger/types"
	"go.uber.org/zap"
)

const (
	statStake            = "stake"
	statWithdraw         = "withdraw"
	statCustodyViolation = "custody_violation"
)

// Engine holds at most one stake position per principal, pulls deposits
// into custody through the ledger and pays principal plus accrued reward
// back on withdrawal.
type Engine struct {
	ledger    balance.Ledger
	positions store.PositionStore
	rate      RewardRate
	custody   string

	clock    clock.Clock
	logger   *zap.Logger
	notifier Notifier
	stripes  int
	locks    *principalLocks

	registry          metrics.Registry
	timers            map[string]metrics.Timer
	custodyViolations metrics.Counter
}

type Option func(*Engine)

func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithLockStripes sets how many mutexes principals are spread over.
func WithLockStripes(n int) Option {
	return func(e *Engine) { e.stripes = n }
}

// WithRegistry registers the engine timers in r instead of a private registry.
func WithRegistry(r metrics.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

func NewEngine(ledger balance.Ledger, positions store.PositionStore, rate RewardRate, opts ...Option) (*Engine, error) {
	if ledger == nil || positions == nil {
		return nil, errors.New("staking engine needs a ledger and a position store")
	}
	if err := rate.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		ledger:    ledger,
		positions: positions,
		rate:      rate,
		clock:     clock.New(),
		logger:    logging.Logger,
		stripes:   config.DefaultLockStripes,
	}
	if c, ok := ledger.(custodian); ok {
		e.custody = c.Custody()
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = metrics.NewRegistry()
	}
	e.logger = e.logger.Named("staking")
	e.locks = newPrincipalLocks(e.stripes)
	e.timers = map[string]metrics.Timer{
		statStake:    metrics.GetOrRegisterTimer("staking:func:"+statStake, e.registry),
		statWithdraw: metrics.GetOrRegisterTimer("staking:func:"+statWithdraw, e.registry),
	}
	e.custodyViolations = metrics.GetOrRegisterCounter("staking:"+statCustodyViolation, e.registry)
	return e, nil
}

// custodian is implemented by ledgers that name their custody account.
type custodian interface {
	Custody() string
}

// checkPrincipal rejects identities that cannot own a position. The custody
// account is one of them: transfers between custody and itself move nothing.
func (e *Engine) checkPrincipal(principal string) error {
	if principal == "" {
		return ErrInvalidPrincipal
	}
	if e.custody != "" && principal == e.custody {
		return errors.Wrapf(ErrInvalidPrincipal, "%s is the custody account", principal)
	}
	return nil
}

func (e *Engine) Rate() RewardRate {
	return e.rate
}

// Stake pulls amt from principal into custody and opens a position
// starting now. Nothing changes if any step fails.
func (e *Engine) Stake(ctx context.Context, principal string, amt amount.Amount) (Receipt, error) {
	defer e.timers[statStake].UpdateSince(time.Now())

	if err := e.checkPrincipal(principal); err != nil {
		return Receipt{}, err
	}
	if amt.IsZero() {
		return Receipt{}, ErrZeroAmount
	}
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	unlock := e.locks.lock(principal)
	pos, err := e.lookup(principal)
	if err != nil {
		unlock()
		return Receipt{}, err
	}
	if pos.Active() {
		unlock()
		return Receipt{}, ErrAlreadyStaked
	}

	if err := e.ledger.TransferIn(ctx, principal, amt); err != nil {
		unlock()
		e.logger.Info("stake rejected by ledger",
			zap.String("principal", principal),
			zap.Uint64("amount", uint64(amt)),
			zap.Error(err))
		return Receipt{}, &transferError{op: "transfer in", err: err}
	}

	pos = &types.StakePosition{
		Principal: principal,
		Amount:    amt,
		StartTime: e.clock.Now().Unix(),
	}
	if err := e.positions.Put(pos); err != nil {
		if rerr := e.ledger.TransferOut(context.WithoutCancel(ctx), principal, amt); rerr != nil {
			e.logger.Error("refund after failed position write",
				zap.String("principal", principal),
				zap.Uint64("amount", uint64(amt)),
				zap.NamedError("write_error", err),
				zap.Error(rerr))
		}
		unlock()
		return Receipt{}, errors.Wrap(err, "persist stake position")
	}
	unlock()

	receipt := Receipt{
		ID:        uuid.New(),
		Kind:      KindStake,
		Principal: principal,
		Amount:    amt,
		StartTime: pos.StartTime,
	}
	e.logger.Info("stake opened",
		zap.String("principal", principal),
		zap.Uint64("amount", uint64(amt)),
		zap.Int64("start", pos.StartTime),
		zap.Stringer("receipt", receipt.ID))
	e.notify(receipt)
	return receipt, nil
}

// Withdraw closes the position of principal and pays principal plus reward.
// The position is cleared before the payout is attempted; if the ledger
// then rejects the payout the position is not restored.
func (e *Engine) Withdraw(ctx context.Context, principal string) (WithdrawResult, error) {
	defer e.timers[statWithdraw].UpdateSince(time.Now())

	if err := e.checkPrincipal(principal); err != nil {
		return WithdrawResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return WithdrawResult{}, err
	}

	unlock := e.locks.lock(principal)
	pos, err := e.lookup(principal)
	if err != nil {
		unlock()
		return WithdrawResult{}, err
	}
	if !pos.Active() {
		unlock()
		return WithdrawResult{}, ErrNoActiveStake
	}

	now := e.clock.Now().Unix()
	reward, err := e.rewardAt(pos, now)
	if err != nil {
		unlock()
		return WithdrawResult{}, err
	}
	total, err := pos.Amount.Add(reward)
	if err != nil {
		unlock()
		return WithdrawResult{}, errors.Wrapf(ErrOverflow, "principal %d plus reward %d", pos.Amount, reward)
	}

	if err := e.positions.Delete(principal); err != nil {
		unlock()
		return WithdrawResult{}, errors.Wrap(err, "clear stake position")
	}
	unlock()

	if err := e.ledger.TransferOut(context.WithoutCancel(ctx), principal, total); err != nil {
		fields := []zap.Field{
			zap.String("principal", principal),
			zap.Uint64("amount", uint64(pos.Amount)),
			zap.Uint64("reward", uint64(reward)),
			zap.Error(err),
		}
		if errors.Is(err, balance.ErrInsufficientCustody) {
			e.custodyViolations.Inc(1)
			e.logger.Error("custody cannot cover withdrawal, position left cleared", fields...)
		} else {
			e.logger.Warn("withdrawal payout failed, position left cleared", fields...)
		}
		return WithdrawResult{}, &transferError{op: "transfer out", err: err}
	}

	res := WithdrawResult{
		Principal: pos.Amount,
		Reward:    reward,
		Receipt: Receipt{
			ID:        uuid.New(),
			Kind:      KindWithdraw,
			Principal: principal,
			Amount:    pos.Amount,
			Reward:    reward,
			StartTime: pos.StartTime,
			EndTime:   now,
		},
	}
	e.logger.Info("stake withdrawn",
		zap.String("principal", principal),
		zap.Uint64("amount", uint64(pos.Amount)),
		zap.Uint64("reward", uint64(reward)),
		zap.Stringer("receipt", res.Receipt.ID))
	e.notify(res.Receipt)
	return res, nil
}

// StakedAmount returns the open stake of principal, or 0.
func (e *Engine) StakedAmount(ctx context.Context, principal string) (amount.Amount, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	pos, err := e.lookup(principal)
	if err != nil {
		return 0, err
	}
	return pos.Amount, nil
}

// Position returns the open position of principal or ErrNoActiveStake.
func (e *Engine) Position(ctx context.Context, principal string) (*types.StakePosition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pos, err := e.lookup(principal)
	if err != nil {
		return nil, err
	}
	if !pos.Active() {
		return nil, ErrNoActiveStake
	}
	return pos, nil
}

// PendingReward is the reward a withdrawal would pay right now.
func (e *Engine) PendingReward(ctx context.Context, principal string) (amount.Amount, error) {
	pos, err := e.Position(ctx, principal)
	if err != nil {
		return 0, err
	}
	return e.rewardAt(pos, e.clock.Now().Unix())
}

func (e *Engine) Stats(ctx context.Context) (types.PoolStats, error) {
	stats := types.PoolStats{
		RateNumerator:   e.rate.Numerator,
		RateDenominator: e.rate.Denominator,
		PeriodSeconds:   e.rate.PeriodSeconds(),
	}
	err := e.positions.Iterate(func(pos *types.StakePosition) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !pos.Active() {
			return nil
		}
		total, err := stats.TotalStaked.Add(pos.Amount)
		if err != nil {
			return errors.Wrap(ErrOverflow, "total staked")
		}
		stats.TotalStaked = total
		stats.ActiveStakers++
		return nil
	})
	if err != nil {
		return types.PoolStats{}, err
	}
	return stats, nil
}

// ExecutionStats exposes the engine timers and counters by name.
func (e *Engine) ExecutionStats() map[string]interface{} {
	out := make(map[string]interface{}, len(e.timers)+1)
	for name, t := range e.timers {
		s := t.Snapshot()
		out[name] = map[string]interface{}{
			"count":  s.Count(),
			"mean":   time.Duration(s.Mean()).String(),
			"max":    time.Duration(s.Max()).String(),
			"p99":    time.Duration(s.Percentile(0.99)).String(),
			"rate1m": s.Rate1(),
		}
	}
	out[statCustodyViolation] = e.custodyViolations.Count()
	return out
}

// lookup returns the stored position or an empty one.
func (e *Engine) lookup(principal string) (*types.StakePosition, error) {
	pos, err := e.positions.Get(principal)
	if errors.Is(err, store.ErrNotFound) {
		return &types.StakePosition{Principal: principal}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load position of %s", principal)
	}
	return pos, nil
}

func (e *Engine) rewardAt(pos *types.StakePosition, now int64) (amount.Amount, error) {
	return e.rate.rewardForSeconds(pos.Amount, now-pos.StartTime)
}

func (e *Engine) notify(r Receipt) {
	if e.notifier != nil {
		e.notifier.NotifyReceipt(r)
	}
}
