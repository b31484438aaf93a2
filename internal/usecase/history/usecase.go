// Package history is the read-only aggregation layer: it reads from every
// other component and mutates nothing.
package history

import (
	"context"
	"time"

	fundingDomain "microlending-engine/internal/domain/funding"
	"microlending-engine/internal/domain/loan"
	repaymentDomain "microlending-engine/internal/domain/repayment"
)

type Usecase struct {
	loans      loan.Repository
	fundings   fundingDomain.Repository
	repayments repaymentDomain.Repository
	grace      time.Duration
	now        func() time.Time
}

func NewUsecase(loans loan.Repository, fundings fundingDomain.Repository, repayments repaymentDomain.Repository, grace time.Duration) *Usecase {
	return &Usecase{
		loans:      loans,
		fundings:   fundings,
		repayments: repayments,
		grace:      grace,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type RepaymentView struct {
	Sequence  uint32                   `json:"sequence"`
	Amount    int64                    `json:"amount"`
	CreatedAt time.Time                `json:"created_at"`
	Payouts   []repaymentDomain.Payout `json:"payouts"`
}

type LoanHistory struct {
	LoanRequest loan.LoanRequest             `json:"loan_request"`
	Fundings    []fundingDomain.Contribution `json:"funding_contributions"`
	Repayments  []RepaymentView              `json:"repayments"`
	// ClaimPayouts are collateral liquidation payouts. They carry no
	// repayment reference because no borrower payment backs them.
	ClaimPayouts   []repaymentDomain.Payout `json:"claim_payouts"`
	TotalDue       int64                    `json:"total_due"`
	TotalRepaid    int64                    `json:"total_repaid"`
	InterestEarned int64                    `json:"interest_earned"`
	// Status is the effective status: a loan past its due date reads as
	// defaulted even before any lender has claimed.
	Status string `json:"status"`
}

type BorrowerMetrics struct {
	Borrower       string `json:"borrower"`
	TotalLoans     int    `json:"total_loans"`
	CompletedLoans int    `json:"completed_loans"`
	DefaultedLoans int    `json:"defaulted_loans"`
}

type SystemStats struct {
	TotalLoans     int64  `json:"total_loans"`
	TotalFunded    int64  `json:"total_funded"`
	TotalRepaid    int64  `json:"total_repaid"`
	LoansFunded    int64  `json:"loans_funded"`
	LoansCompleted int64  `json:"loans_completed"`
	LoansDefaulted int64  `json:"loans_defaulted"`
	DefaultRateBps uint32 `json:"default_rate_bps"`
}

func (u *Usecase) GetLoanRequest(ctx context.Context, loanID string) (*loan.LoanRequest, error) {
	return u.loans.GetByLoanID(ctx, loanID)
}

func (u *Usecase) GetLoanFundings(ctx context.Context, loanID string) ([]fundingDomain.Contribution, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return u.fundings.ListByLoan(ctx, l.ID)
}

func (u *Usecase) GetLoanRepayments(ctx context.Context, loanID string) ([]RepaymentView, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return u.repaymentViews(ctx, l.ID)
}

func (u *Usecase) repaymentViews(ctx context.Context, loanNumericID uint64) ([]RepaymentView, error) {
	rps, err := u.repayments.ListByLoan(ctx, loanNumericID)
	if err != nil {
		return nil, err
	}
	views := make([]RepaymentView, 0, len(rps))
	for _, rp := range rps {
		payouts, err := u.repayments.ListPayoutsByRepayment(ctx, rp.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, RepaymentView{
			Sequence:  rp.Sequence,
			Amount:    rp.Amount,
			CreatedAt: rp.CreatedAt,
			Payouts:   payouts,
		})
	}
	return views, nil
}

// GetLoanHistory aggregates the request, all fundings, all repayments with
// their payout breakdowns, any collateral claim payouts, and the derived
// totals into one view.
func (u *Usecase) GetLoanHistory(ctx context.Context, loanID string) (*LoanHistory, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	contribs, err := u.fundings.ListByLoan(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	views, err := u.repaymentViews(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	allPayouts, err := u.repayments.ListPayoutsByLoan(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	var claimPayouts []repaymentDomain.Payout
	for _, p := range allPayouts {
		if p.RepaymentID == 0 {
			claimPayouts = append(claimPayouts, p)
		}
	}

	interestEarned := int64(0)
	if l.TotalRepaid > l.Amount {
		interestEarned = l.TotalRepaid - l.Amount
	}
	status := l.Status
	if l.InDefault(u.now(), u.grace) {
		status = loan.StatusDefaulted
	}

	return &LoanHistory{
		LoanRequest:    *l,
		Fundings:       contribs,
		Repayments:     views,
		ClaimPayouts:   claimPayouts,
		TotalDue:       l.TotalDue(),
		TotalRepaid:    l.TotalRepaid,
		InterestEarned: interestEarned,
		Status:         string(status),
	}, nil
}

// GetBorrowerLoans returns the borrower's loan ids, oldest first.
func (u *Usecase) GetBorrowerLoans(ctx context.Context, borrower string) ([]string, error) {
	loans, err := u.loans.ListByBorrower(ctx, borrower)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(loans))
	for _, l := range loans {
		ids = append(ids, l.LoanID)
	}
	return ids, nil
}

// GetLenderLoans returns the distinct loan ids the lender has funded.
func (u *Usecase) GetLenderLoans(ctx context.Context, lender string) ([]string, error) {
	return u.fundings.ListLoanIDsByLender(ctx, lender)
}

func (u *Usecase) GetBorrowerMetrics(ctx context.Context, borrower string) (*BorrowerMetrics, error) {
	loans, err := u.loans.ListByBorrower(ctx, borrower)
	if err != nil {
		return nil, err
	}
	m := &BorrowerMetrics{Borrower: borrower, TotalLoans: len(loans)}
	for _, l := range loans {
		switch l.Status {
		case loan.StatusCompleted:
			m.CompletedLoans++
		case loan.StatusDefaulted:
			m.DefaultedLoans++
		}
	}
	return m, nil
}

func (u *Usecase) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	s, err := u.loans.Stats(ctx)
	if err != nil {
		return nil, err
	}
	out := &SystemStats{
		TotalLoans:     s.TotalLoans,
		TotalFunded:    s.TotalFunded,
		TotalRepaid:    s.TotalRepaid,
		LoansFunded:    s.LoansFunded,
		LoansCompleted: s.LoansCompleted,
		LoansDefaulted: s.LoansDefaulted,
	}
	if s.TotalLoans > 0 {
		out.DefaultRateBps = uint32(s.LoansDefaulted * loan.BpsDenominator / s.TotalLoans)
	}
	return out, nil
}
