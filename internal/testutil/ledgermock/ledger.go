package ledgermock

import (
	"context"
	"sync"

	domain "microlending-engine/internal/domain/ledger"
)

var _ domain.Ledger = (*Ledger)(nil)

// Ledger is an in-memory account facade for tests. Zero value is usable;
// seed balances with Deposit. TransferFn, when set, intercepts transfers.
type Ledger struct {
	mu         sync.Mutex
	balances   map[string]int64
	Transfers  []Transfer
	TransferFn func(ctx context.Context, from, to string, amount int64) error
}

type Transfer struct {
	From   string
	To     string
	Amount int64
}

func New() *Ledger { return &Ledger{balances: make(map[string]int64)} }

func (m *Ledger) Deposit(account string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances == nil {
		m.balances = make(map[string]int64)
	}
	m.balances[account] += amount
}

func (m *Ledger) Transfer(ctx context.Context, from, to string, amount int64) error {
	if m.TransferFn != nil {
		return m.TransferFn(ctx, from, to, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if amount <= 0 {
		return domain.ErrInvalidTransfer
	}
	if m.balances[from] < amount {
		return domain.ErrInsufficientFunds
	}
	m.balances[from] -= amount
	m.balances[to] += amount
	m.Transfers = append(m.Transfers, Transfer{From: from, To: to, Amount: amount})
	return nil
}

func (m *Ledger) Balance(ctx context.Context, account string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[account]
	if !ok {
		return 0, domain.ErrAccountNotFound
	}
	return b, nil
}
