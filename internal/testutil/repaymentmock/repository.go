package repaymentmock

import (
	"context"

	domain "microlending-engine/internal/domain/repayment"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	AppendFn                 func(ctx context.Context, r *domain.Repayment) error
	AppendPayoutsFn          func(ctx context.Context, payouts []domain.Payout) error
	ListByLoanFn             func(ctx context.Context, loanID uint64) ([]domain.Repayment, error)
	ListPayoutsByRepaymentFn func(ctx context.Context, repaymentID uint64) ([]domain.Payout, error)
	ListPayoutsByLoanFn      func(ctx context.Context, loanID uint64) ([]domain.Payout, error)
	CountByLoanFn            func(ctx context.Context, loanID uint64) (int64, error)
}

func (m *Repo) Append(ctx context.Context, r *domain.Repayment) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, r)
	}
	return nil
}

func (m *Repo) AppendPayouts(ctx context.Context, payouts []domain.Payout) error {
	if m.AppendPayoutsFn != nil {
		return m.AppendPayoutsFn(ctx, payouts)
	}
	return nil
}

func (m *Repo) ListByLoan(ctx context.Context, loanID uint64) ([]domain.Repayment, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanID)
	}
	return nil, nil
}

func (m *Repo) ListPayoutsByRepayment(ctx context.Context, repaymentID uint64) ([]domain.Payout, error) {
	if m.ListPayoutsByRepaymentFn != nil {
		return m.ListPayoutsByRepaymentFn(ctx, repaymentID)
	}
	return nil, nil
}

func (m *Repo) ListPayoutsByLoan(ctx context.Context, loanID uint64) ([]domain.Payout, error) {
	if m.ListPayoutsByLoanFn != nil {
		return m.ListPayoutsByLoanFn(ctx, loanID)
	}
	return nil, nil
}

func (m *Repo) CountByLoan(ctx context.Context, loanID uint64) (int64, error) {
	if m.CountByLoanFn != nil {
		return m.CountByLoanFn(ctx, loanID)
	}
	return 0, nil
}
