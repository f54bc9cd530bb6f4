package staking

import (
	"github.com/google/uuid"
	"github.com/thrylos-labs/stakeledger/amount"
)

type ReceiptKind string

const (
	KindStake    ReceiptKind = "stake"
	KindWithdraw ReceiptKind = "withdraw"
)

// Receipt records one completed stake or withdrawal.
type Receipt struct {
	ID        uuid.UUID     `json:"id"`
	Kind      ReceiptKind   `json:"kind"`
	Principal string        `json:"principal"`
	Amount    amount.Amount `json:"amount"`
	Reward    amount.Amount `json:"reward"`
	StartTime int64         `json:"startTime"`
	EndTime   int64         `json:"endTime,omitempty"`
}

// WithdrawResult is what a withdrawal paid out.
type WithdrawResult struct {
	Principal amount.Amount `json:"principal"`
	Reward    amount.Amount `json:"reward"`
	Receipt   Receipt       `json:"receipt"`
}

// Total is principal plus reward.
func (w WithdrawResult) Total() amount.Amount {
	return w.Principal + w.Reward
}

// Notifier is told about every completed stake and withdrawal.
type Notifier interface {
	NotifyReceipt(r Receipt)
}
