// Package ledger defines the account facade the engine moves value through.
// The engine never holds funds itself beyond bookkeeping; every transfer is
// delegated here and a failed transfer aborts the whole operation.
package ledger

import (
	"errors"
	"time"
)

var (
	ErrTransferFailed    = errors.New("ledger transfer failed")
	ErrInsufficientFunds = errors.New("insufficient account balance")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInvalidTransfer   = errors.New("transfer amount must be positive")
)

// Account is a logical balance row for the built-in gorm ledger. External
// deployments may satisfy Ledger with a real token/payment backend instead.
type Account struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	AccountID string    `gorm:"size:32;uniqueIndex:ux_accounts_account_id" json:"account_id"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (Account) TableName() string { return "accounts" }
