package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet holds a user's stored balance. One wallet per user. Balances are
// mutated only by the ledger/payment services, never written directly by
// handlers, so that wallet.BalanceKobo always equals the balance_after of the
// wallet's most recent transaction.
type Wallet struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	BalanceKobo     int64          `gorm:"not null;default:0" json:"balance_kobo"`
	TotalFundedKobo int64          `gorm:"not null;default:0" json:"total_funded_kobo"` // lifetime funding credits
	TotalSpentKobo  int64          `gorm:"not null;default:0" json:"total_spent_kobo"`  // lifetime debits
	Currency        string         `gorm:"size:3;default:'NGN'" json:"currency"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Wallet) TableName() string { return "wallets" }
