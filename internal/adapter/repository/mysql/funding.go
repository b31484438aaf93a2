package mysql

import (
	"context"

	fundingDomain "microlending-engine/internal/domain/funding"

	"gorm.io/gorm"
)

type FundingRepository struct{ db *gorm.DB }

func NewFundingRepository(db *gorm.DB) *FundingRepository { return &FundingRepository{db: db} }

func (r *FundingRepository) Append(ctx context.Context, c *fundingDomain.Contribution) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *FundingRepository) ListByLoan(ctx context.Context, loanID uint64) ([]fundingDomain.Contribution, error) {
	var out []fundingDomain.Contribution
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *FundingRepository) ListLoanIDsByLender(ctx context.Context, lender string) ([]string, error) {
	var out []string
	res := r.db.WithContext(ctx).
		Model(&fundingDomain.Contribution{}).
		Distinct("loan_requests.loan_id").
		Joins("JOIN loan_requests ON loan_requests.id = funding_contributions.loan_id").
		Where("funding_contributions.lender = ?", lender).
		Order("loan_requests.loan_id ASC").
		Pluck("loan_requests.loan_id", &out)
	return out, res.Error
}

func (r *FundingRepository) MarkClaimed(ctx context.Context, loanID uint64, lender string) error {
	return r.db.WithContext(ctx).
		Model(&fundingDomain.Contribution{}).
		Where("loan_id = ? AND lender = ?", loanID, lender).
		Update("claimed", true).Error
}
