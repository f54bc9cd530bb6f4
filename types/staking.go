package types

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/thrylos-labs/stakeledger/amount"
)

// StakePosition is the per-principal staking record. A zero Amount means
// the principal has no active stake and StartTime carries no meaning.
type StakePosition struct {
	Principal string        `cbor:"1,keyasint" json:"principal"`
	Amount    amount.Amount `cbor:"2,keyasint" json:"amount"`
	StartTime int64         `cbor:"3,keyasint" json:"startTime"` // unix seconds
}

func (p *StakePosition) Active() bool {
	return p != nil && p.Amount > 0
}

func (p *StakePosition) Marshal() ([]byte, error) {
	return cbor.Marshal(p)
}

func (p *StakePosition) Unmarshal(data []byte) error {
	return cbor.Unmarshal(data, p)
}

// PoolStats summarises the custody pool.
type PoolStats struct {
	TotalStaked     amount.Amount `json:"totalStaked"`
	ActiveStakers   int           `json:"activeStakers"`
	RateNumerator   uint64        `json:"rateNumerator"`
	RateDenominator uint64        `json:"rateDenominator"`
	PeriodSeconds   int64         `json:"periodSeconds"`
}
