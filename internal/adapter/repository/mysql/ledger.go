package mysql

import (
	"context"
	"errors"

	ledgerDomain "microlending-engine/internal/domain/ledger"

	"gorm.io/gorm"
)

// AccountRepository is the built-in gorm ledger. Bound to a transaction it
// gives the engine atomic value movement: a rolled-back tx rolls back the
// balances too.
type AccountRepository struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) *AccountRepository { return &AccountRepository{db: db} }

func (r *AccountRepository) Transfer(ctx context.Context, from, to string, amount int64) error {
	if amount <= 0 || from == to {
		return ledgerDomain.ErrInvalidTransfer
	}

	// Lock in sorted key order so two opposing transfers cannot deadlock.
	first, second := from, to
	if second < first {
		first, second = second, first
	}
	rows := make(map[string]*ledgerDomain.Account, 2)
	for _, accountID := range []string{first, second} {
		var a ledgerDomain.Account
		err := forUpdate(r.db.WithContext(ctx)).
			Where("account_id = ?", accountID).
			First(&a).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if accountID == from {
				return ledgerDomain.ErrAccountNotFound
			}
			// Destination accounts are created on first credit.
			a = ledgerDomain.Account{AccountID: accountID}
			if err := r.db.WithContext(ctx).Create(&a).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		rows[accountID] = &a
	}

	src, dst := rows[from], rows[to]
	if src.Balance < amount {
		return ledgerDomain.ErrInsufficientFunds
	}
	src.Balance -= amount
	dst.Balance += amount
	if err := r.db.WithContext(ctx).Save(src).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(dst).Error
}

func (r *AccountRepository) Balance(ctx context.Context, account string) (int64, error) {
	var a ledgerDomain.Account
	err := r.db.WithContext(ctx).Where("account_id = ?", account).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ledgerDomain.ErrAccountNotFound
	}
	return a.Balance, err
}

// Deposit credits an account, creating it if needed. Used to seed the escrow
// account and in tests; real deployments fund accounts out of band.
func (r *AccountRepository) Deposit(ctx context.Context, account string, amount int64) error {
	if amount <= 0 {
		return ledgerDomain.ErrInvalidTransfer
	}
	var a ledgerDomain.Account
	err := forUpdate(r.db.WithContext(ctx)).
		Where("account_id = ?", account).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(&ledgerDomain.Account{AccountID: account, Balance: amount}).Error
	}
	if err != nil {
		return err
	}
	a.Balance += amount
	return r.db.WithContext(ctx).Save(&a).Error
}
