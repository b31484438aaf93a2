package funding

import "context"

type Repository interface {
	Append(ctx context.Context, c *Contribution) error
	// ListByLoan returns contributions in insertion order.
	ListByLoan(ctx context.Context, loanID uint64) ([]Contribution, error)
	// ListLoanIDsByLender returns distinct public loan ids the lender funded.
	ListLoanIDsByLender(ctx context.Context, lender string) ([]string, error)
	// MarkClaimed flags all of one lender's contributions on a loan.
	MarkClaimed(ctx context.Context, loanID uint64, lender string) error
}
