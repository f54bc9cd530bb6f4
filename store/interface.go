package store

import (
	"github.com/pkg/errors"
	"github.com/thrylos-labs/stakeledger/types"
)

var ErrNotFound = errors.New("stake position not found")

// PositionStore is the durable mapping from principal to StakePosition.
// Implementations return copies; callers may mutate what they receive.
type PositionStore interface {
	// Get returns ErrNotFound when the principal has no record.
	Get(principal string) (*types.StakePosition, error)
	Put(pos *types.StakePosition) error
	// Delete is a no-op for unknown principals.
	Delete(principal string) error
	Iterate(fn func(*types.StakePosition) error) error
	Close() error
}
