package ledger

import "context"

// Ledger moves value between accounts. Implementations must be synchronous
// and fail-fast: when Transfer returns an error no balance may have moved.
type Ledger interface {
	Transfer(ctx context.Context, from, to string, amount int64) error
	Balance(ctx context.Context, account string) (int64, error)
}
