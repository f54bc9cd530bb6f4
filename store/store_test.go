package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thrylos-labs/stakeledger/types"
)

const (
	alice = "tl1v9kxjcm9v9kxjcm9v9kxjcm9v9kxjcm9skaxd0"
	bob   = "tl1vfhkycn0vf3x7cnzda3xymmzvfhkycn0q2xqnn"
)

func openStores(t *testing.T) map[string]PositionStore {
	t.Helper()

	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)

	cached, err := NewCachedStore(NewMemoryStore(), 16)
	require.NoError(t, err)

	stores := map[string]PositionStore{
		"memory": NewMemoryStore(),
		"badger": db,
		"cached": cached,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestPositionStoreRoundTrip(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(alice)
			assert.ErrorIs(t, err, ErrNotFound)

			pos := &types.StakePosition{Principal: alice, Amount: 1000, StartTime: 1700000000}
			require.NoError(t, s.Put(pos))

			got, err := s.Get(alice)
			require.NoError(t, err)
			assert.Equal(t, *pos, *got)

			got.Amount = 1
			again, err := s.Get(alice)
			require.NoError(t, err)
			assert.Equal(t, pos.Amount, again.Amount, "store must hand out copies")

			require.NoError(t, s.Delete(alice))
			_, err = s.Get(alice)
			assert.ErrorIs(t, err, ErrNotFound)

			assert.NoError(t, s.Delete(bob), "deleting an unknown principal is a no-op")
		})
	}
}

func TestPositionStoreIterate(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Put(&types.StakePosition{Principal: alice, Amount: 10, StartTime: 1}))
			require.NoError(t, s.Put(&types.StakePosition{Principal: bob, Amount: 20, StartTime: 2}))

			seen := map[string]uint64{}
			require.NoError(t, s.Iterate(func(p *types.StakePosition) error {
				seen[p.Principal] = uint64(p.Amount)
				return nil
			}))
			assert.Equal(t, map[string]uint64{alice: 10, bob: 20}, seen)

			stop := errors.New("stop")
			err := s.Iterate(func(*types.StakePosition) error { return stop })
			assert.ErrorIs(t, err, stop)
		})
	}
}

func TestDatabaseReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := NewDatabase(dir)
	require.NoError(t, err)
	require.NoError(t, db.Put(&types.StakePosition{Principal: alice, Amount: 42, StartTime: 7}))
	require.NoError(t, db.Close())

	db, err = NewDatabase(dir)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.Get(alice)
	require.NoError(t, err)
	assert.EqualValues(t, 42, got.Amount)
	assert.EqualValues(t, 7, got.StartTime)
}

func TestCachedStoreWarmsFromBacking(t *testing.T) {
	backing := NewMemoryStore()
	require.NoError(t, backing.Put(&types.StakePosition{Principal: alice, Amount: 5, StartTime: 3}))

	cs, err := NewCachedStore(backing, 4)
	require.NoError(t, err)

	got, err := cs.Get(alice)
	require.NoError(t, err)
	assert.EqualValues(t, 5, got.Amount)

	_, err = cs.Get(bob)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLRUCacheEvictionAndPurge(t *testing.T) {
	c, err := NewLRUCache[int](2, 100, 0.01)
	require.NoError(t, err)

	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry evicted")
	assert.True(t, c.MaybeContains("a"), "bloom filter remembers evicted keys")

	v, ok := c.Get("c")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	c.Remove("c")
	_, ok = c.Get("c")
	assert.False(t, ok)

	c.Purge()
	assert.False(t, c.MaybeContains("b"))
}
