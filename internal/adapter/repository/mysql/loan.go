package mysql

import (
	"context"
	"errors"

	loanDomain "microlending-engine/internal/domain/loan"

	"gorm.io/gorm"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

// Tx runs fn in a db transaction, passing a repo bound to the tx
func (r *LoanRepository) Tx(ctx context.Context, fn func(repo loanDomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LoanRepository{db: tx})
	})
}

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.LoanRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.LoanRequest) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.LoanRequest, error) {
	var out loanDomain.LoanRequest
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	return &out, res.Error
}

// GetByLoanIDForUpdate takes a row lock; callers hold it until their
// transaction ends, which is what serializes writers per loan.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.LoanRequest, error) {
	var out loanDomain.LoanRequest
	res := forUpdate(r.db.WithContext(ctx)).
		Where("loan_id = ?", loanID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *LoanRepository) ListByBorrower(ctx context.Context, borrower string) ([]loanDomain.LoanRequest, error) {
	var out []loanDomain.LoanRequest
	res := r.db.WithContext(ctx).
		Where("borrower = ?", borrower).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) Stats(ctx context.Context) (*loanDomain.Stats, error) {
	var out loanDomain.Stats
	res := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*)                                                        AS total_loans,
			COALESCE(SUM(funded_amount), 0)                                 AS total_funded,
			COALESCE(SUM(total_repaid), 0)                                  AS total_repaid,
			COALESCE(SUM(CASE WHEN funded_at IS NOT NULL THEN 1 ELSE 0 END), 0) AS loans_funded,
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0)  AS loans_completed,
			COALESCE(SUM(CASE WHEN status = 'defaulted' THEN 1 ELSE 0 END), 0)  AS loans_defaulted
		FROM loan_requests`).Scan(&out)
	return &out, res.Error
}
