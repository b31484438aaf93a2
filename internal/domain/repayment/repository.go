package repayment

import "context"

type Repository interface {
	Append(ctx context.Context, r *Repayment) error
	AppendPayouts(ctx context.Context, payouts []Payout) error
	ListByLoan(ctx context.Context, loanID uint64) ([]Repayment, error)
	ListPayoutsByRepayment(ctx context.Context, repaymentID uint64) ([]Payout, error)
	ListPayoutsByLoan(ctx context.Context, loanID uint64) ([]Payout, error)
	CountByLoan(ctx context.Context, loanID uint64) (int64, error)
}
