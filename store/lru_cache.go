package store

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/thrylos-labs/stakeledger/types"
	"github.com/willf/bloom"
)

// LRUCache keeps recently used entries and a Bloom filter over every key it
// has seen. A negative Bloom test proves the key was never added.
type LRUCache[V any] struct {
	cache       *lru.Cache[string, V]
	bloomFilter *bloom.BloomFilter
	mutex       sync.RWMutex
}

// NewLRUCache creates a new LRU cache with a Bloom filter
func NewLRUCache[V any](size int, expectedItems uint, falsePositiveRate float64) (*LRUCache[V], error) {
	c, err := lru.New[string, V](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache[V]{
		cache:       c,
		bloomFilter: bloom.NewWithEstimates(expectedItems, falsePositiveRate),
	}, nil
}

// MaybeContains reports false only when key was never added.
func (c *LRUCache[V]) MaybeContains(key string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.bloomFilter.TestString(key)
}

// Get retrieves a value from the cache
func (c *LRUCache[V]) Get(key string) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if !c.bloomFilter.TestString(key) {
		var zero V
		return zero, false
	}
	return c.cache.Get(key)
}

// Add adds a value to the cache
func (c *LRUCache[V]) Add(key string, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.bloomFilter.AddString(key)
	c.cache.Add(key, value)
}

// Remove evicts key. The Bloom filter keeps it.
func (c *LRUCache[V]) Remove(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.cache.Remove(key)
}

// Purge clears all items from the cache
func (c *LRUCache[V]) Purge() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.cache.Purge()
	c.bloomFilter.ClearAll()
}

// CachedStore fronts a PositionStore with an LRUCache. Writes go through to
// the backing store before the cache is touched. fillMu orders cache fills
// after a miss against writes, so a read that raced a Delete cannot put the
// deleted position back.
type CachedStore struct {
	backing PositionStore
	cache   *LRUCache[types.StakePosition]
	fillMu  sync.Mutex
}

// NewCachedStore wraps backing and seeds the Bloom filter from its contents,
// so lookups for principals that never staked skip the backing store.
func NewCachedStore(backing PositionStore, size int) (*CachedStore, error) {
	expected := uint(size) * 4
	if expected < 1024 {
		expected = 1024
	}
	cache, err := NewLRUCache[types.StakePosition](size, expected, 0.01)
	if err != nil {
		return nil, errors.Wrap(err, "create position cache")
	}
	cs := &CachedStore{backing: backing, cache: cache}
	err = backing.Iterate(func(pos *types.StakePosition) error {
		cache.Add(pos.Principal, *pos)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "warm position cache")
	}
	return cs, nil
}

func (s *CachedStore) Get(principal string) (*types.StakePosition, error) {
	if !s.cache.MaybeContains(principal) {
		return nil, ErrNotFound
	}
	if pos, ok := s.cache.Get(principal); ok {
		return &pos, nil
	}

	s.fillMu.Lock()
	defer s.fillMu.Unlock()
	if pos, ok := s.cache.Get(principal); ok {
		return &pos, nil
	}
	pos, err := s.backing.Get(principal)
	if err != nil {
		return nil, err
	}
	s.cache.Add(principal, *pos)
	return pos, nil
}

func (s *CachedStore) Put(pos *types.StakePosition) error {
	s.fillMu.Lock()
	defer s.fillMu.Unlock()
	if err := s.backing.Put(pos); err != nil {
		return err
	}
	s.cache.Add(pos.Principal, *pos)
	return nil
}

func (s *CachedStore) Delete(principal string) error {
	s.fillMu.Lock()
	defer s.fillMu.Unlock()
	if err := s.backing.Delete(principal); err != nil {
		return err
	}
	s.cache.Remove(principal)
	return nil
}

func (s *CachedStore) Iterate(fn func(*types.StakePosition) error) error {
	return s.backing.Iterate(fn)
}

func (s *CachedStore) Close() error {
	s.cache.Purge()
	return s.backing.Close()
}
