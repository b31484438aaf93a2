package uow

import (
	"context"

	"microlending-engine/internal/domain/funding"
	"microlending-engine/internal/domain/ledger"
	"microlending-engine/internal/domain/loan"
	"microlending-engine/internal/domain/repayment"
)

// Repos bundles every repository bound to one transaction.
type Repos struct {
	Loans      loan.Repository
	Fundings   funding.Repository
	Repayments repayment.Repository
	Ledger     ledger.Ledger
}

// UnitOfWork serializes an entry point against shared state: the callback
// either commits as a whole or rolls back as a whole.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row up-front (per-loan mutual exclusion),
	// so check-then-act sequences like the over-funding guard are atomic.
	// Returns loan.ErrNotFound when the loan does not exist.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.LoanRequest) error) error
}
