package mysql

import (
	"context"

	repaymentDomain "microlending-engine/internal/domain/repayment"

	"gorm.io/gorm"
)

type RepaymentRepository struct{ db *gorm.DB }

func NewRepaymentRepository(db *gorm.DB) *RepaymentRepository { return &RepaymentRepository{db: db} }

func (r *RepaymentRepository) Append(ctx context.Context, p *repaymentDomain.Repayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *RepaymentRepository) AppendPayouts(ctx context.Context, payouts []repaymentDomain.Payout) error {
	if len(payouts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&payouts).Error
}

func (r *RepaymentRepository) ListByLoan(ctx context.Context, loanID uint64) ([]repaymentDomain.Repayment, error) {
	var out []repaymentDomain.Repayment
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("sequence ASC").
		Find(&out)
	return out, res.Error
}

func (r *RepaymentRepository) ListPayoutsByRepayment(ctx context.Context, repaymentID uint64) ([]repaymentDomain.Payout, error) {
	var out []repaymentDomain.Payout
	res := r.db.WithContext(ctx).
		Where("repayment_id = ?", repaymentID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *RepaymentRepository) ListPayoutsByLoan(ctx context.Context, loanID uint64) ([]repaymentDomain.Payout, error) {
	var out []repaymentDomain.Payout
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *RepaymentRepository) CountByLoan(ctx context.Context, loanID uint64) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).
		Model(&repaymentDomain.Repayment{}).
		Where("loan_id = ?", loanID).
		Count(&n)
	return n, res.Error
}
