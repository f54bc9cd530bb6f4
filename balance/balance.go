package balance

import (
	"context"

	"github.com/pkg/errors"
	"github.com/thrylos-labs/stakeledger/amount"
)

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientCustody = errors.New("insufficient custody balance")
	ErrInvalidAccount      = errors.New("invalid account")
)

// Ledger is the fungible balance ledger the staking engine settles against.
// Every call is atomic: it is either fully applied or has no effect.
type Ledger interface {
	// TransferIn moves amt from the external balance of from into custody.
	// Fails with ErrInsufficientFunds when the balance or the spending
	// authorization granted to custody is short.
	TransferIn(ctx context.Context, from string, amt amount.Amount) error
	// TransferOut moves amt from custody to to. Fails with
	// ErrInsufficientCustody when custody holds less than amt.
	TransferOut(ctx context.Context, to string, amt amount.Amount) error
	BalanceOf(ctx context.Context, account string) (amount.Amount, error)
}

// Notifier receives the new balance of an account after every change.
type Notifier interface {
	NotifyBalanceUpdate(address string, balance amount.Amount)
}

// FormatBalance renders a balance in whole THR.
func FormatBalance(balance amount.Amount) string {
	return balance.Format(amount.THR)
}

// ToNano converts a THR denominated float to the smallest unit.
func ToNano(thrylos float64) (amount.Amount, error) {
	return amount.NewAmount(thrylos)
}
