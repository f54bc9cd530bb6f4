package staking

import (
	"github.com/pkg/errors"
)

var (
	ErrZeroAmount       = errors.New("stake amount must be positive")
	ErrAlreadyStaked    = errors.New("principal already has an open stake")
	ErrNoActiveStake    = errors.New("principal has no active stake")
	ErrTransferFailed   = errors.New("ledger transfer failed")
	ErrOverflow         = errors.New("reward computation overflow")
	ErrInvalidPrincipal = errors.New("invalid principal")
	ErrInvalidRate      = errors.New("invalid reward rate")
)

// transferError reports a rejected ledger call. It matches both
// ErrTransferFailed and whatever the ledger returned.
type transferError struct {
	op  string
	err error
}

func (e *transferError) Error() string {
	return e.op + ": " + ErrTransferFailed.Error() + ": " + e.err.Error()
}

func (e *transferError) Is(target error) bool {
	return target == ErrTransferFailed
}

func (e *transferError) Unwrap() error {
	return e.err
}
