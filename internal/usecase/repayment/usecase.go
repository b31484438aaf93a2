package repayment

import (
	"context"
	"fmt"
	"time"

	fundingDomain "microlending-engine/internal/domain/funding"
	"microlending-engine/internal/domain/ledger"
	"microlending-engine/internal/domain/loan"
	repaymentDomain "microlending-engine/internal/domain/repayment"
	"microlending-engine/internal/domain/uow"
	"microlending-engine/pkg/prorata"
)

type Usecase struct {
	loans      loan.Repository
	repayments repaymentDomain.Repository
	uw         uow.UnitOfWork
	escrow     string
	now        func() time.Time
}

func NewUsecase(loans loan.Repository, repayments repaymentDomain.Repository, uw uow.UnitOfWork, escrow string) *Usecase {
	return &Usecase{
		loans:      loans,
		repayments: repayments,
		uw:         uw,
		escrow:     escrow,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type PayoutDTO struct {
	Lender string `json:"lender"`
	Amount int64  `json:"amount"`
}

type RepaymentDTO struct {
	LoanID       string      `json:"loan_id"`
	Sequence     uint32      `json:"sequence"`
	Amount       int64       `json:"amount"`
	Payouts      []PayoutDTO `json:"payouts"`
	RemainingDue int64       `json:"remaining_due"`
	Status       string      `json:"status"`
}

// Repay accepts a borrower payment and distributes it across the
// contributing lenders in the same transaction. The split uses the
// largest-remainder method over per-lender contribution totals, so the
// payouts sum to the submitted amount exactly and no unit is ever stranded
// in escrow. Each call is distributed independently; the remainder is
// reallocated in full every time, so no cumulative rounding debt needs
// tracking.
func (u *Usecase) Repay(ctx context.Context, caller, loanID string, amount int64) (*RepaymentDTO, error) {
	if amount <= 0 {
		return nil, loan.ErrInvalidAmount
	}

	var dto *RepaymentDTO
	err := u.uw.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.LoanRequest) error {
		if l.Borrower != caller {
			return loan.ErrUnauthorized
		}
		if l.Status != loan.StatusFunded && l.Status != loan.StatusRepaying {
			return loan.ErrInvalidStatus
		}
		if amount > l.Outstanding() {
			return repaymentDomain.ErrOverRepayment
		}

		if err := r.Ledger.Transfer(ctx, caller, u.escrow, amount); err != nil {
			return fmt.Errorf("%w: %w", ledger.ErrTransferFailed, err)
		}

		contribs, err := r.Fundings.ListByLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		lenders, totals := fundingDomain.GroupByLender(contribs)
		shares, err := prorata.Distribute(amount, totals)
		if err != nil {
			return err
		}

		seq, err := r.Repayments.CountByLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		rp := &repaymentDomain.Repayment{
			LoanID:   l.ID,
			Sequence: uint32(seq) + 1,
			Amount:   amount,
		}
		if err := r.Repayments.Append(ctx, rp); err != nil {
			return err
		}

		payouts := make([]repaymentDomain.Payout, 0, len(lenders))
		payoutDTOs := make([]PayoutDTO, 0, len(lenders))
		for i, lender := range lenders {
			if shares[i] == 0 {
				continue
			}
			if err := r.Ledger.Transfer(ctx, u.escrow, lender, shares[i]); err != nil {
				return fmt.Errorf("%w: %w", ledger.ErrTransferFailed, err)
			}
			payouts = append(payouts, repaymentDomain.Payout{
				RepaymentID: rp.ID,
				LoanID:      l.ID,
				Lender:      lender,
				Amount:      shares[i],
			})
			payoutDTOs = append(payoutDTOs, PayoutDTO{Lender: lender, Amount: shares[i]})
		}
		if err := r.Repayments.AppendPayouts(ctx, payouts); err != nil {
			return err
		}

		l.TotalRepaid += amount
		next := loan.StatusRepaying
		if l.Outstanding() == 0 {
			next = loan.StatusCompleted
		}
		if l.Status != next {
			if err := l.TransitionTo(next); err != nil {
				return err
			}
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		dto = &RepaymentDTO{
			LoanID:       l.LoanID,
			Sequence:     rp.Sequence,
			Amount:       amount,
			Payouts:      payoutDTOs,
			RemainingDue: l.Outstanding(),
			Status:       string(l.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// TotalDue returns principal plus interest for the loan.
func (u *Usecase) TotalDue(ctx context.Context, loanID string) (int64, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return 0, err
	}
	return l.TotalDue(), nil
}
