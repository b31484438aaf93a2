package repayment

import (
	"errors"
	"time"
)

// ErrOverRepayment rejects a payment beyond the outstanding balance rather
// than silently capping it, so caller mistakes surface.
var ErrOverRepayment = errors.New("repayment exceeds outstanding balance")

// Repayment is one borrower payment against a loan. Immutable once written.
type Repayment struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	LoanID    uint64    `gorm:"not null;index:idx_repayments_loan" json:"-"`
	Sequence  uint32    `gorm:"not null" json:"sequence"`
	Amount    int64     `gorm:"not null" json:"amount"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Repayment) TableName() string { return "repayments" }

// Payout is one lender's slice of a repayment (or of a collateral
// liquidation), recorded for the audit trail.
type Payout struct {
	ID          uint64    `gorm:"primaryKey;column:id" json:"-"`
	RepaymentID uint64    `gorm:"not null;index:idx_repayment_payouts_repayment" json:"-"`
	LoanID      uint64    `gorm:"not null;index:idx_repayment_payouts_loan" json:"-"`
	Lender      string    `gorm:"size:32" json:"lender"`
	Amount      int64     `gorm:"not null" json:"amount"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Payout) TableName() string { return "repayment_payouts" }
