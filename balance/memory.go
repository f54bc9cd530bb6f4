package balance

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/thrylos-labs/stakeledger/amount"
)

type update struct {
	address string
	balance amount.Amount
}

// Memory is an in-process Ledger with token style mint, approve and
// transfer operations. Custody is an ordinary account whose name is fixed
// at construction; TransferIn spends the allowance owners grant it.
type Memory struct {
	mu         sync.Mutex
	custody    string
	balances   map[string]amount.Amount
	allowances map[string]map[string]amount.Amount
	notifier   Notifier
}

func NewMemory(custody string) (*Memory, error) {
	if custody == "" {
		return nil, errors.Wrap(ErrInvalidAccount, "custody account is empty")
	}
	return &Memory{
		custody:    custody,
		balances:   make(map[string]amount.Amount),
		allowances: make(map[string]map[string]amount.Amount),
	}, nil
}

// SetNotifier installs n. Passing nil disables notifications.
func (m *Memory) SetNotifier(n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifier = n
}

func (m *Memory) Custody() string {
	return m.custody
}

// Mint creates amt out of thin air and credits it to to.
func (m *Memory) Mint(to string, amt amount.Amount) error {
	if to == "" {
		return ErrInvalidAccount
	}
	m.mu.Lock()
	bal, err := m.balances[to].Add(amt)
	if err != nil {
		m.mu.Unlock()
		return errors.Wrapf(err, "mint %d to %s", amt, to)
	}
	m.balances[to] = bal
	n := m.notifier
	m.mu.Unlock()

	m.notify(n, update{to, bal})
	return nil
}

// Approve sets the amount spender may pull from owner, replacing any
// previous allowance.
func (m *Memory) Approve(owner, spender string, amt amount.Amount) error {
	if owner == "" || spender == "" {
		return ErrInvalidAccount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.allowances[owner] == nil {
		m.allowances[owner] = make(map[string]amount.Amount)
	}
	m.allowances[owner][spender] = amt
	return nil
}

func (m *Memory) Allowance(owner, spender string) amount.Amount {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowances[owner][spender]
}

// Transfer moves amt between two accounts without touching allowances.
func (m *Memory) Transfer(from, to string, amt amount.Amount) error {
	if from == "" || to == "" {
		return ErrInvalidAccount
	}
	m.mu.Lock()
	updates, err := m.move(from, to, amt, ErrInsufficientFunds)
	n := m.notifier
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.notify(n, updates...)
	return nil
}

func (m *Memory) TransferIn(ctx context.Context, from string, amt amount.Amount) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if from == "" {
		return ErrInvalidAccount
	}

	m.mu.Lock()
	allowed := m.allowances[from][m.custody]
	if allowed < amt {
		m.mu.Unlock()
		return errors.Wrapf(ErrInsufficientFunds, "allowance %d < %d", allowed, amt)
	}
	updates, err := m.move(from, m.custody, amt, ErrInsufficientFunds)
	if err == nil {
		m.allowances[from][m.custody] = allowed - amt
	}
	n := m.notifier
	m.mu.Unlock()

	if err != nil {
		return err
	}
	m.notify(n, updates...)
	return nil
}

func (m *Memory) TransferOut(ctx context.Context, to string, amt amount.Amount) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to == "" {
		return ErrInvalidAccount
	}

	m.mu.Lock()
	updates, err := m.move(m.custody, to, amt, ErrInsufficientCustody)
	n := m.notifier
	m.mu.Unlock()

	if err != nil {
		return err
	}
	m.notify(n, updates...)
	return nil
}

func (m *Memory) BalanceOf(ctx context.Context, account string) (amount.Amount, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[account], nil
}

// move must be called with m.mu held. Nothing is written unless both sides
// of the transfer can be applied.
func (m *Memory) move(from, to string, amt amount.Amount, short error) ([]update, error) {
	src, err := m.balances[from].Sub(amt)
	if err != nil {
		return nil, errors.Wrapf(short, "%s holds %d, needs %d", from, m.balances[from], amt)
	}
	if from == to {
		return []update{{from, m.balances[from]}}, nil
	}
	dst, err := m.balances[to].Add(amt)
	if err != nil {
		return nil, errors.Wrapf(err, "credit %s", to)
	}
	m.balances[from] = src
	m.balances[to] = dst
	return []update{{from, src}, {to, dst}}, nil
}

func (m *Memory) notify(n Notifier, updates ...update) {
	if n == nil {
		return
	}
	for _, u := range updates {
		n.NotifyBalanceUpdate(u.address, u.balance)
	}
}
