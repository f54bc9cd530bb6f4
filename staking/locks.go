package staking

import (
	"strconv"
	"sync"

	"github.com/stathat/consistent"
)

// principalLocks serializes operations on one principal. Principals are
// spread over a fixed set of mutexes with a consistent hash ring, so the
// same principal always lands on the same stripe.
type principalLocks struct {
	ring    *consistent.Consistent
	stripes map[string]*sync.Mutex
}

func newPrincipalLocks(n int) *principalLocks {
	if n < 1 {
		n = 1
	}
	l := &principalLocks{
		ring:    consistent.New(),
		stripes: make(map[string]*sync.Mutex, n),
	}
	for i := 0; i < n; i++ {
		name := "stripe-" + strconv.Itoa(i)
		l.ring.Add(name)
		l.stripes[name] = new(sync.Mutex)
	}
	return l
}

func (l *principalLocks) get(principal string) *sync.Mutex {
	name, err := l.ring.Get(principal)
	if err != nil {
		// ring is never empty after construction
		panic(err)
	}
	return l.stripes[name]
}

// lock acquires the stripe of principal and returns its unlock func.
func (l *principalLocks) lock(principal string) func() {
	mu := l.get(principal)
	mu.Lock()
	return mu.Unlock
}
