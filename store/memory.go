package store

import (
	"sync"

	"github.com/thrylos-labs/stakeledger/types"
)

// MemoryStore keeps positions in a map. Used by tests and in-memory nodes.
type MemoryStore struct {
	mu        sync.RWMutex
	positions map[string]types.StakePosition
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{positions: make(map[string]types.StakePosition)}
}

func (m *MemoryStore) Get(principal string) (*types.StakePosition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pos, ok := m.positions[principal]
	if !ok {
		return nil, ErrNotFound
	}
	return &pos, nil
}

func (m *MemoryStore) Put(pos *types.StakePosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[pos.Principal] = *pos
	return nil
}

func (m *MemoryStore) Delete(principal string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.positions, principal)
	return nil
}

func (m *MemoryStore) Iterate(fn func(*types.StakePosition) error) error {
	m.mu.RLock()
	snapshot := make([]types.StakePosition, 0, len(m.positions))
	for _, pos := range m.positions {
		snapshot = append(snapshot, pos)
	}
	m.mu.RUnlock()

	for i := range snapshot {
		if err := fn(&snapshot[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
