package mysql

import (
	"context"

	"microlending-engine/internal/domain/ledger"
	"microlending-engine/internal/domain/loan"
	"microlending-engine/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct {
	db        *gorm.DB
	ledgerFor func(tx *gorm.DB) ledger.Ledger
}

func NewGormUoW(db *gorm.DB) *GormUoW {
	return &GormUoW{
		db:        db,
		ledgerFor: func(tx *gorm.DB) ledger.Ledger { return NewAccountRepository(tx) },
	}
}

// WithLedger swaps the built-in account ledger for an external facade
// (e.g. a token bridge). The facade must still fail fast: the surrounding
// transaction only protects the engine's own rows.
func (u *GormUoW) WithLedger(fn func(tx *gorm.DB) ledger.Ledger) *GormUoW {
	u.ledgerFor = fn
	return u
}

func (u *GormUoW) repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Loans:      &LoanRepository{db: tx},
		Fundings:   &FundingRepository{db: tx},
		Repayments: &RepaymentRepository{db: tx},
		Ledger:     u.ledgerFor(tx),
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(u.repos(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.LoanRequest) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := u.repos(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetByLoanIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
