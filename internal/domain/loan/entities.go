package loan

import (
	"errors"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusFunded    Status = "funded"
	StatusRepaying  Status = "repaying"
	StatusCompleted Status = "completed"
	StatusDefaulted Status = "defaulted"
	StatusCancelled Status = "cancelled"
)

const (
	MaxDurationDays = 1095 // 3 years
	MaxRateBps      = 10000
	BpsDenominator  = 10000
)

var (
	ErrNotFound          = errors.New("loan not found")
	ErrUnauthorized      = errors.New("caller is not the required party")
	ErrInvalidStatus     = errors.New("operation not allowed in current loan status")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidDuration   = errors.New("duration must be between 1 and 1095 days")
	ErrInvalidRate       = errors.New("interest rate must be between 0 and 10000 basis points")
	ErrInvalidCollateral = errors.New("collateral must have a positive value and an asset type")
)

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusDefaulted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo encodes the monotonic lifecycle:
// pending → funded → repaying → completed, pending → cancelled,
// funded|repaying → defaulted. No backward edges.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusFunded || next == StatusCancelled
	case StatusFunded:
		return next == StatusRepaying || next == StatusCompleted || next == StatusDefaulted
	case StatusRepaying:
		return next == StatusCompleted || next == StatusDefaulted
	}
	return false
}

// CollateralInfo describes the pledged asset backing a loan request,
// e.g. {"Future harvest", 150000, sha256-of-appraisal-docs}.
type CollateralInfo struct {
	AssetType        string `gorm:"column:collateral_asset_type;size:100" json:"asset_type"`
	EstimatedValue   int64  `gorm:"column:collateral_estimated_value" json:"estimated_value"`
	VerificationHash string `gorm:"column:collateral_verification_hash;size:64" json:"verification_hash"`
}

// LoanRequest is the canonical loan record. Monetary fields are integers in
// the smallest currency unit.
type LoanRequest struct {
	ID              uint64         `gorm:"primaryKey;column:id" json:"-"`
	LoanID          string         `gorm:"size:32;uniqueIndex:ux_loan_requests_loan_id" json:"loan_id"`
	Borrower        string         `gorm:"size:32;index:idx_loan_requests_borrower" json:"borrower"`
	Amount          int64          `gorm:"not null" json:"amount"`
	Purpose         string         `gorm:"size:500" json:"purpose"`
	DurationDays    uint32         `gorm:"not null" json:"duration_days"`
	InterestRateBps uint32         `gorm:"not null" json:"interest_rate_bps"`
	Collateral      CollateralInfo `gorm:"embedded" json:"collateral"`
	Status          Status         `gorm:"size:16;default:'pending'" json:"status"`
	FundedAmount    int64          `gorm:"not null;default:0" json:"funded_amount"`
	TotalRepaid     int64          `gorm:"not null;default:0" json:"total_repaid"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"-"`
	FundedAt        *time.Time     `json:"funded_at,omitempty"`
	DueAt           *time.Time     `json:"due_at,omitempty"`
}

func (LoanRequest) TableName() string { return "loan_requests" }

// TransitionTo moves the loan to next, rejecting any edge the lifecycle
// does not allow.
func (l *LoanRequest) TransitionTo(next Status) error {
	if !l.Status.CanTransitionTo(next) {
		return ErrInvalidStatus
	}
	l.Status = next
	return nil
}

// TotalDue is principal plus simple interest, floor division on the
// interest term.
func (l *LoanRequest) TotalDue() int64 {
	return l.Amount + l.Amount*int64(l.InterestRateBps)/BpsDenominator
}

// Outstanding is the remaining balance the borrower still owes.
func (l *LoanRequest) Outstanding() int64 {
	return l.TotalDue() - l.TotalRepaid
}

// Validate checks the request fields shared by create and update.
func (l *LoanRequest) Validate() error {
	if l.Amount <= 0 {
		return ErrInvalidAmount
	}
	if l.DurationDays < 1 || l.DurationDays > MaxDurationDays {
		return ErrInvalidDuration
	}
	if l.InterestRateBps > MaxRateBps {
		return ErrInvalidRate
	}
	if l.Collateral.EstimatedValue <= 0 || l.Collateral.AssetType == "" {
		return ErrInvalidCollateral
	}
	return nil
}
