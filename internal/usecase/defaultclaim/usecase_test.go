package defaultclaim

import (
	"context"
	"errors"
	"testing"
	"time"

	fundingDomain "microlending-engine/internal/domain/funding"
	"microlending-engine/internal/domain/ledger"
	"microlending-engine/internal/domain/loan"
	repaymentDomain "microlending-engine/internal/domain/repayment"
	"microlending-engine/internal/domain/uow"
	"microlending-engine/internal/testutil/fundingmock"
	"microlending-engine/internal/testutil/ledgermock"
	"microlending-engine/internal/testutil/loanmock"
	"microlending-engine/internal/testutil/repaymentmock"
	"microlending-engine/internal/testutil/uowmock"
)

const (
	escrow   = "escrow0000000000000000000000esc0"
	borrower = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	lenderA  = "1111111111111111111111111111111a"
	lenderB  = "1111111111111111111111111111111b"
	loanID   = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

	grace = 24 * time.Hour
)

type fixture struct {
	uc       *Usecase
	loan     *loan.LoanRequest
	contribs []fundingDomain.Contribution
	payouts  []repaymentDomain.Payout
	ledger   *ledgermock.Ledger
}

// newFixture builds a funded loan whose due date sits dueOffset away from
// now (negative means overdue), with contributions 600/400 and collateral
// worth 1500.
func newFixture(dueOffset time.Duration) *fixture {
	now := time.Now().UTC()
	due := now.Add(dueOffset)
	f := &fixture{
		loan: &loan.LoanRequest{
			ID:              7,
			LoanID:          loanID,
			Borrower:        borrower,
			Amount:          1_000,
			DurationDays:    90,
			InterestRateBps: 1000,
			Collateral:      loan.CollateralInfo{AssetType: "Harvest", EstimatedValue: 1_500},
			Status:          loan.StatusFunded,
			FundedAmount:    1_000,
			FundedAt:        &now,
			DueAt:           &due,
		},
		contribs: []fundingDomain.Contribution{
			{LoanID: 7, Lender: lenderA, Amount: 600},
			{LoanID: 7, Lender: lenderB, Amount: 400},
		},
		ledger: ledgermock.New(),
	}
	f.ledger.Deposit(escrow, 10_000)

	loans := &loanmock.Repo{
		GetByLoanIDFn: func(ctx context.Context, id string) (*loan.LoanRequest, error) {
			if f.loan.LoanID == id {
				return f.loan, nil
			}
			return nil, loan.ErrNotFound
		},
	}
	fundings := &fundingmock.Repo{
		ListByLoanFn: func(ctx context.Context, id uint64) ([]fundingDomain.Contribution, error) {
			return f.contribs, nil
		},
		MarkClaimedFn: func(ctx context.Context, id uint64, lender string) error {
			for i := range f.contribs {
				if f.contribs[i].Lender == lender {
					f.contribs[i].Claimed = true
				}
			}
			return nil
		},
	}
	repayments := &repaymentmock.Repo{
		AppendPayoutsFn: func(ctx context.Context, ps []repaymentDomain.Payout) error {
			f.payouts = append(f.payouts, ps...)
			return nil
		},
	}
	uw := uowmock.Passthrough(
		uow.Repos{Loans: loans, Fundings: fundings, Repayments: repayments, Ledger: f.ledger},
		func(id string) (*loan.LoanRequest, error) { return loans.GetByLoanID(context.Background(), id) },
	)
	f.uc = NewUsecase(loans, uw, escrow, grace)
	return f
}

func TestCheckDefaultStatus(t *testing.T) {
	tests := []struct {
		name      string
		dueOffset time.Duration
		setup     func(f *fixture)
		want      bool
	}{
		{"before due date", 48 * time.Hour, nil, false},
		{"overdue inside grace", -12 * time.Hour, nil, false},
		{"past grace", -48 * time.Hour, nil, true},
		{"past grace but repaid", -48 * time.Hour, func(f *fixture) {
			f.loan.TotalRepaid = f.loan.TotalDue()
		}, false},
		{"pending never defaults", -48 * time.Hour, func(f *fixture) {
			f.loan.Status = loan.StatusPending
			f.loan.DueAt = nil
		}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(tc.dueOffset)
			if tc.setup != nil {
				tc.setup(f)
			}
			got, err := f.uc.CheckDefaultStatus(context.Background(), loanID)
			if err != nil {
				t.Fatalf("CheckDefaultStatus: %v", err)
			}
			if got != tc.want {
				t.Fatalf("in default=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestClaimDefault(t *testing.T) {
	f := newFixture(-48 * time.Hour)

	dto, err := f.uc.ClaimDefault(context.Background(), lenderA, loanID)
	if err != nil {
		t.Fatalf("ClaimDefault: %v", err)
	}
	// 60% of the 1500 collateral.
	if dto.Payout != 900 || dto.CollateralValue != 1_500 {
		t.Fatalf("unexpected dto: %+v", dto)
	}
	if dto.Status != string(loan.StatusDefaulted) || f.loan.Status != loan.StatusDefaulted {
		t.Fatalf("loan not flipped to defaulted: %+v", dto)
	}
	if bal, _ := f.ledger.Balance(context.Background(), lenderA); bal != 900 {
		t.Fatalf("lender balance=%d want=900", bal)
	}
	if len(f.payouts) != 1 || f.payouts[0].RepaymentID != 0 {
		t.Fatalf("liquidation payout not recorded: %+v", f.payouts)
	}

	// Repeat claim by the same lender fails; the other lender still
	// collects their own slice.
	if _, err := f.uc.ClaimDefault(context.Background(), lenderA, loanID); !errors.Is(err, fundingDomain.ErrAlreadyClaimed) {
		t.Fatalf("err=%v want ErrAlreadyClaimed", err)
	}
	dto, err = f.uc.ClaimDefault(context.Background(), lenderB, loanID)
	if err != nil {
		t.Fatalf("second lender claim: %v", err)
	}
	if dto.Payout != 600 {
		t.Fatalf("second payout=%d want=600", dto.Payout)
	}

	// Slices sum to the collateral value exactly.
	a, _ := f.ledger.Balance(context.Background(), lenderA)
	b, _ := f.ledger.Balance(context.Background(), lenderB)
	if a+b != 1_500 {
		t.Fatalf("claims sum to %d, want collateral value 1500", a+b)
	}
}

func TestClaimDefault_NotInDefault(t *testing.T) {
	f := newFixture(48 * time.Hour)
	if _, err := f.uc.ClaimDefault(context.Background(), lenderA, loanID); !errors.Is(err, ErrNotInDefault) {
		t.Fatalf("err=%v want ErrNotInDefault", err)
	}
}

func TestClaimDefault_NoContribution(t *testing.T) {
	f := newFixture(-48 * time.Hour)
	if _, err := f.uc.ClaimDefault(context.Background(), "2222222222222222222222222222222f", loanID); !errors.Is(err, fundingDomain.ErrNoContribution) {
		t.Fatalf("err=%v want ErrNoContribution", err)
	}
}

func TestClaimDefault_AlreadyDefaultedStatus(t *testing.T) {
	// A loan already marked defaulted stays claimable even though the
	// InDefault predicate no longer fires for terminal statuses.
	f := newFixture(-48 * time.Hour)
	f.loan.Status = loan.StatusDefaulted

	dto, err := f.uc.ClaimDefault(context.Background(), lenderB, loanID)
	if err != nil {
		t.Fatalf("ClaimDefault: %v", err)
	}
	if dto.Payout != 600 {
		t.Fatalf("payout=%d want=600", dto.Payout)
	}
}

func TestClaimDefault_TransferFailure(t *testing.T) {
	f := newFixture(-48 * time.Hour)
	f.ledger.TransferFn = func(ctx context.Context, from, to string, amount int64) error {
		return ledger.ErrInsufficientFunds
	}

	_, err := f.uc.ClaimDefault(context.Background(), lenderA, loanID)
	if !errors.Is(err, ledger.ErrTransferFailed) {
		t.Fatalf("err=%v want ErrTransferFailed", err)
	}
}
