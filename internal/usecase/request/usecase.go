package request

import (
	"context"
	"time"

	"microlending-engine/internal/domain/loan"
	"microlending-engine/internal/domain/uow"
	"microlending-engine/pkg/id"
)

type Usecase struct {
	repo loan.Repository
	uw   uow.UnitOfWork
	now  func() time.Time
}

func NewUsecase(repo loan.Repository, uw uow.UnitOfWork) *Usecase {
	return &Usecase{repo: repo, uw: uw, now: func() time.Time { return time.Now().UTC() }}
}

type CollateralInput struct {
	AssetType        string `json:"asset_type"`
	EstimatedValue   int64  `json:"estimated_value"`
	VerificationHash string `json:"verification_hash"`
}

type LoanInput struct {
	Amount          int64           `json:"amount"`
	Purpose         string          `json:"purpose"`
	DurationDays    uint32          `json:"duration_days"`
	InterestRateBps uint32          `json:"interest_rate_bps"`
	Collateral      CollateralInput `json:"collateral"`
}

type LoanDTO struct {
	LoanID          string              `json:"loan_id"`
	Borrower        string              `json:"borrower"`
	Amount          int64               `json:"amount"`
	Purpose         string              `json:"purpose"`
	DurationDays    uint32              `json:"duration_days"`
	InterestRateBps uint32              `json:"interest_rate_bps"`
	Collateral      loan.CollateralInfo `json:"collateral"`
	Status          string              `json:"status"`
	FundedAmount    int64               `json:"funded_amount"`
	TotalDue        int64               `json:"total_due"`
	Schedule        loan.Schedule       `json:"schedule"`
	CreatedAt       time.Time           `json:"created_at"`
	FundedAt        *time.Time          `json:"funded_at,omitempty"`
	DueAt           *time.Time          `json:"due_at,omitempty"`
}

func toDTO(l *loan.LoanRequest) *LoanDTO {
	return &LoanDTO{
		LoanID:          l.LoanID,
		Borrower:        l.Borrower,
		Amount:          l.Amount,
		Purpose:         l.Purpose,
		DurationDays:    l.DurationDays,
		InterestRateBps: l.InterestRateBps,
		Collateral:      l.Collateral,
		Status:          string(l.Status),
		FundedAmount:    l.FundedAmount,
		TotalDue:        l.TotalDue(),
		Schedule:        l.Schedule(),
		CreatedAt:       l.CreatedAt,
		FundedAt:        l.FundedAt,
		DueAt:           l.DueAt,
	}
}

func applyInput(l *loan.LoanRequest, in LoanInput) {
	l.Amount = in.Amount
	l.Purpose = in.Purpose
	l.DurationDays = in.DurationDays
	l.InterestRateBps = in.InterestRateBps
	l.Collateral = loan.CollateralInfo{
		AssetType:        in.Collateral.AssetType,
		EstimatedValue:   in.Collateral.EstimatedValue,
		VerificationHash: in.Collateral.VerificationHash,
	}
}

// Create registers a new loan request in pending status. The borrower is the
// authenticated caller, never a body field.
func (u *Usecase) Create(ctx context.Context, borrower string, in LoanInput) (*LoanDTO, error) {
	l := &loan.LoanRequest{
		LoanID:    id.NewID32(),
		Borrower:  borrower,
		Status:    loan.StatusPending,
		CreatedAt: u.now(),
	}
	applyInput(l, in)
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return toDTO(l), nil
}

// Update rewrites the request fields. Allowed only while the loan is pending
// and nobody has funded it yet.
func (u *Usecase) Update(ctx context.Context, caller, loanID string, in LoanInput) (*LoanDTO, error) {
	var dto *LoanDTO
	err := u.uw.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.LoanRequest) error {
		if l.Borrower != caller {
			return loan.ErrUnauthorized
		}
		if l.Status != loan.StatusPending || l.FundedAmount > 0 {
			return loan.ErrInvalidStatus
		}
		applyInput(l, in)
		if err := l.Validate(); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		dto = toDTO(l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Cancel transitions a pending request to cancelled, a terminal state.
func (u *Usecase) Cancel(ctx context.Context, caller, loanID string) error {
	return u.uw.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.LoanRequest) error {
		if l.Borrower != caller {
			return loan.ErrUnauthorized
		}
		if err := l.TransitionTo(loan.StatusCancelled); err != nil {
			return err
		}
		return r.Loans.Save(ctx, l)
	})
}

// Get returns the loan request by public id.
func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.repo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toDTO(l), nil
}
