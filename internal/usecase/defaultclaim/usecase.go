package defaultclaim

import (
	"context"
	"errors"
	"fmt"
	"time"

	fundingDomain "microlending-engine/internal/domain/funding"
	"microlending-engine/internal/domain/ledger"
	"microlending-engine/internal/domain/loan"
	repaymentDomain "microlending-engine/internal/domain/repayment"
	"microlending-engine/internal/domain/uow"
	"microlending-engine/pkg/prorata"
)

// ErrNotInDefault rejects claims against loans that are current.
var ErrNotInDefault = errors.New("loan is not in default")

type Usecase struct {
	loans  loan.Repository
	uw     uow.UnitOfWork
	escrow string
	grace  time.Duration
	now    func() time.Time
}

// NewUsecase wires the default handler. grace extends the due date before a
// loan counts as defaulted.
func NewUsecase(loans loan.Repository, uw uow.UnitOfWork, escrow string, grace time.Duration) *Usecase {
	return &Usecase{
		loans:  loans,
		uw:     uw,
		escrow: escrow,
		grace:  grace,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type ClaimDTO struct {
	LoanID          string `json:"loan_id"`
	Lender          string `json:"lender"`
	CollateralValue int64  `json:"collateral_value"`
	Payout          int64  `json:"payout"`
	Status          string `json:"status"`
}

// CheckDefaultStatus reports whether the loan is past its grace-extended due
// date with money outstanding.
func (u *Usecase) CheckDefaultStatus(ctx context.Context, loanID string) (bool, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return false, err
	}
	return l.InDefault(u.now(), u.grace), nil
}

// ClaimDefault releases the claiming lender's slice of the collateral value.
// The lump distribution over all lenders is computed with the same
// remainder-safe split used for repayments; since the contribution set is
// immutable by now, every claim sees the same distribution and the slices
// across all lenders sum to the collateral value exactly. The first
// successful claim flips the loan to defaulted; later claims by other
// lenders still pay out, a repeat claim by the same lender fails.
func (u *Usecase) ClaimDefault(ctx context.Context, lender, loanID string) (*ClaimDTO, error) {
	var dto *ClaimDTO
	err := u.uw.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.LoanRequest) error {
		if l.Status != loan.StatusDefaulted && !l.InDefault(u.now(), u.grace) {
			return ErrNotInDefault
		}

		contribs, err := r.Fundings.ListByLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		lenders, totals := fundingDomain.GroupByLender(contribs)
		callerIdx := -1
		for i, name := range lenders {
			if name == lender {
				callerIdx = i
				break
			}
		}
		if callerIdx < 0 {
			return fundingDomain.ErrNoContribution
		}
		claimed := true
		for _, c := range contribs {
			if c.Lender == lender && !c.Claimed {
				claimed = false
				break
			}
		}
		if claimed {
			return fundingDomain.ErrAlreadyClaimed
		}

		shares, err := prorata.Distribute(l.Collateral.EstimatedValue, totals)
		if err != nil {
			return err
		}
		payout := shares[callerIdx]

		if l.Status != loan.StatusDefaulted {
			if err := l.TransitionTo(loan.StatusDefaulted); err != nil {
				return err
			}
		}
		if payout > 0 {
			if err := r.Ledger.Transfer(ctx, u.escrow, lender, payout); err != nil {
				return fmt.Errorf("%w: %w", ledger.ErrTransferFailed, err)
			}
			// Liquidation payouts share the audit table with repayment
			// payouts; RepaymentID stays zero for them.
			if err := r.Repayments.AppendPayouts(ctx, []repaymentDomain.Payout{{
				LoanID: l.ID,
				Lender: lender,
				Amount: payout,
			}}); err != nil {
				return err
			}
		}
		if err := r.Fundings.MarkClaimed(ctx, l.ID, lender); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		dto = &ClaimDTO{
			LoanID:          l.LoanID,
			Lender:          lender,
			CollateralValue: l.Collateral.EstimatedValue,
			Payout:          payout,
			Status:          string(l.Status),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}
