package models

import (
	"time"

	"gorm.io/gorm"
)

// WithdrawalRequest tracks a lecturer/partner payout through its review
// lifecycle: pending -> approved -> paid, or pending -> rejected.
type WithdrawalRequest struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	AmountKobo       int64          `gorm:"not null" json:"amount_kobo"`
	BankName         string         `gorm:"size:128" json:"bank_name"`
	AccountNumber    string         `gorm:"size:32" json:"account_number"`
	AccountName      string         `gorm:"size:128" json:"account_name"`
	Status           string         `gorm:"size:20;not null;index" json:"status"` // pending | approved | rejected | paid
	ReviewNotes      string         `gorm:"size:512" json:"review_notes,omitempty"`
	RejectionReason  string         `gorm:"size:512" json:"rejection_reason,omitempty"`
	ReviewedBy       *uint          `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time     `json:"reviewed_at,omitempty"`
	PaymentReference string         `gorm:"size:128" json:"payment_reference,omitempty"`
	PaidBy           *uint          `json:"paid_by,omitempty"`
	PaidAt           *time.Time     `json:"paid_at,omitempty"`
	// TransactionID is set at approval time, when the payout amount is
	// reserved out of the wallet with a pending withdrawal transaction.
	TransactionID *uint          `gorm:"index" json:"transaction_id,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (WithdrawalRequest) TableName() string { return "withdrawal_requests" }
