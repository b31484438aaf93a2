package funding

import (
	"context"
	"fmt"
	"time"

	fundingDomain "microlending-engine/internal/domain/funding"
	"microlending-engine/internal/domain/ledger"
	"microlending-engine/internal/domain/loan"
	"microlending-engine/internal/domain/uow"
)

type Usecase struct {
	loans    loan.Repository
	fundings fundingDomain.Repository
	uw       uow.UnitOfWork
	escrow   string
	now      func() time.Time
}

// NewUsecase wires the funding ledger. escrow is the account that holds
// contributions until the principal is released to the borrower.
func NewUsecase(loans loan.Repository, fundings fundingDomain.Repository, uw uow.UnitOfWork, escrow string) *Usecase {
	return &Usecase{
		loans:    loans,
		fundings: fundings,
		uw:       uw,
		escrow:   escrow,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type ContributionDTO struct {
	LoanID       string `json:"loan_id"`
	Lender       string `json:"lender"`
	Amount       int64  `json:"amount"`
	FundedAmount int64  `json:"funded_amount"`
	Status       string `json:"status"`
	FullyFunded  bool   `json:"fully_funded"`
}

// Fund accepts a lender contribution. Partial funding is allowed; a
// contribution that would overshoot the requested amount is rejected rather
// than capped. When the request becomes fully funded the loan flips to
// funded, the due date is fixed, and the principal is released to the
// borrower. Everything happens inside the same per-loan transaction, so a
// failed transfer leaves no partial state behind.
func (u *Usecase) Fund(ctx context.Context, lender, loanID string, amount int64) (*ContributionDTO, error) {
	if amount <= 0 {
		return nil, loan.ErrInvalidAmount
	}

	var dto *ContributionDTO
	err := u.uw.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.LoanRequest) error {
		if l.Status != loan.StatusPending {
			return loan.ErrInvalidStatus
		}
		if l.Borrower == lender {
			return loan.ErrUnauthorized
		}
		// Compared against the remaining gap so a huge amount cannot wrap
		// the sum past MaxInt64.
		if amount > l.Amount-l.FundedAmount {
			return fundingDomain.ErrOverFunding
		}

		if err := r.Ledger.Transfer(ctx, lender, u.escrow, amount); err != nil {
			return fmt.Errorf("%w: %w", ledger.ErrTransferFailed, err)
		}

		c := &fundingDomain.Contribution{
			LoanID: l.ID,
			Lender: lender,
			Amount: amount,
		}
		if err := r.Fundings.Append(ctx, c); err != nil {
			return err
		}

		l.FundedAmount += amount
		fullyFunded := l.FundedAmount == l.Amount
		if fullyFunded {
			if err := l.TransitionTo(loan.StatusFunded); err != nil {
				return err
			}
			fundedAt := u.now()
			dueAt := fundedAt.Add(l.RepaymentSpan())
			l.FundedAt = &fundedAt
			l.DueAt = &dueAt
			// Release the principal to the borrower.
			if err := r.Ledger.Transfer(ctx, u.escrow, l.Borrower, l.FundedAmount); err != nil {
				return fmt.Errorf("%w: %w", ledger.ErrTransferFailed, err)
			}
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		dto = &ContributionDTO{
			LoanID:       l.LoanID,
			Lender:       lender,
			Amount:       amount,
			FundedAmount: l.FundedAmount,
			Status:       string(l.Status),
			FullyFunded:  fullyFunded,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// CalculateLenderShare sums the lender's contributions on a loan. The sum of
// all lenders' shares equals the funded amount exactly.
func (u *Usecase) CalculateLenderShare(ctx context.Context, lender, loanID string) (int64, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return 0, err
	}
	contribs, err := u.fundings.ListByLoan(ctx, l.ID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, c := range contribs {
		if c.Lender == lender {
			total += c.Amount
		}
	}
	return total, nil
}

// CalculateLenderSharePercent returns the lender's share of the funded
// amount in basis points, rounded down. Because every lender's share is
// floored, the shares across lenders may sum to less than 10000 bps; that is
// expected. Settlement never uses these figures, it distributes with the
// remainder-safe split instead.
func (u *Usecase) CalculateLenderSharePercent(ctx context.Context, lender, loanID string) (uint32, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return 0, err
	}
	if l.FundedAmount == 0 {
		return 0, nil
	}
	share, err := u.CalculateLenderShare(ctx, lender, loanID)
	if err != nil {
		return 0, err
	}
	return uint32(share * loan.BpsDenominator / l.FundedAmount), nil
}

// GetLoanFundings returns the loan's contribution records in insertion order.
func (u *Usecase) GetLoanFundings(ctx context.Context, loanID string) ([]fundingDomain.Contribution, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return u.fundings.ListByLoan(ctx, l.ID)
}
