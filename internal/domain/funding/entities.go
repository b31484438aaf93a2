package funding

import (
	"errors"
	"time"
)

var (
	// ErrOverFunding rejects a contribution that would push the funded total
	// past the requested amount. Partial funding is fine; overshoot is not.
	ErrOverFunding = errors.New("contribution exceeds remaining funding amount")
	// ErrNoContribution means the caller never funded the loan.
	ErrNoContribution = errors.New("lender has no contribution on this loan")
	// ErrAlreadyClaimed means the lender already collected their default payout.
	ErrAlreadyClaimed = errors.New("lender already claimed their default share")
)

// Contribution is one lender's payment toward a loan. Append-only: rows are
// never updated (except the Claimed flag on default) and never deleted.
type Contribution struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	LoanID    uint64    `gorm:"not null;index:idx_funding_contributions_loan" json:"-"`
	Lender    string    `gorm:"size:32;index:idx_funding_contributions_lender" json:"lender"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Claimed   bool      `gorm:"not null;default:false" json:"claimed"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Contribution) TableName() string { return "funding_contributions" }

// GroupByLender folds contributions into per-lender totals, preserving
// first-contribution order. That order is the deterministic tie-break for
// remainder allocation, so it must be stable across calls.
func GroupByLender(contribs []Contribution) (lenders []string, totals []int64) {
	index := make(map[string]int, len(contribs))
	for _, c := range contribs {
		i, ok := index[c.Lender]
		if !ok {
			i = len(lenders)
			index[c.Lender] = i
			lenders = append(lenders, c.Lender)
			totals = append(totals, 0)
		}
		totals[i] += c.Amount
	}
	return lenders, totals
}
