package loanmock

import (
	"context"

	domain "microlending-engine/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only fill in the methods a test needs.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.LoanRequest) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.LoanRequest, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.LoanRequest, error)
	SaveFn                 func(ctx context.Context, l *domain.LoanRequest) error
	ListByBorrowerFn       func(ctx context.Context, borrower string) ([]domain.LoanRequest, error)
	StatsFn                func(ctx context.Context) (*domain.Stats, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.LoanRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.LoanRequest, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.LoanRequest, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Save(ctx context.Context, l *domain.LoanRequest) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) ListByBorrower(ctx context.Context, borrower string) ([]domain.LoanRequest, error) {
	if m.ListByBorrowerFn != nil {
		return m.ListByBorrowerFn(ctx, borrower)
	}
	return nil, nil
}

func (m *Repo) Stats(ctx context.Context) (*domain.Stats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx)
	}
	return &domain.Stats{}, nil
}
