package loan

import "context"

// Stats aggregates the whole engine for reporting.
type Stats struct {
	TotalLoans     int64
	TotalFunded    int64
	TotalRepaid    int64
	LoansFunded    int64
	LoansCompleted int64
	LoansDefaulted int64
}

type Repository interface {
	Create(ctx context.Context, l *LoanRequest) error
	GetByLoanID(ctx context.Context, loanID string) (*LoanRequest, error)
	// GetByLoanIDForUpdate locks the row for the rest of the transaction;
	// only meaningful inside a UnitOfWork.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*LoanRequest, error)
	Save(ctx context.Context, l *LoanRequest) error
	ListByBorrower(ctx context.Context, borrower string) ([]LoanRequest, error)
	Stats(ctx context.Context) (*Stats, error)
}
