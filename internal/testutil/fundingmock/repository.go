package fundingmock

import (
	"context"

	domain "microlending-engine/internal/domain/funding"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	AppendFn              func(ctx context.Context, c *domain.Contribution) error
	ListByLoanFn          func(ctx context.Context, loanID uint64) ([]domain.Contribution, error)
	ListLoanIDsByLenderFn func(ctx context.Context, lender string) ([]string, error)
	MarkClaimedFn         func(ctx context.Context, loanID uint64, lender string) error
}

func (m *Repo) Append(ctx context.Context, c *domain.Contribution) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, c)
	}
	return nil
}

func (m *Repo) ListByLoan(ctx context.Context, loanID uint64) ([]domain.Contribution, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanID)
	}
	return nil, nil
}

func (m *Repo) ListLoanIDsByLender(ctx context.Context, lender string) ([]string, error) {
	if m.ListLoanIDsByLenderFn != nil {
		return m.ListLoanIDsByLenderFn(ctx, lender)
	}
	return nil, nil
}

func (m *Repo) MarkClaimed(ctx context.Context, loanID uint64, lender string) error {
	if m.MarkClaimedFn != nil {
		return m.MarkClaimedFn(ctx, loanID, lender)
	}
	return nil
}
