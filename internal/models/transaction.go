package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction is one append-only ledger entry recording a single balance
// mutation. Rows are never updated after completion and never deleted; the
// only permitted update is pending -> completed (funding verification,
// withdrawal payout).
type Transaction struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	WalletID          uint   `gorm:"not null;index" json:"wallet_id"`
	Type              string `gorm:"size:10;not null;index" json:"type"`    // credit | debit
	Purpose           string `gorm:"size:30;not null;index" json:"purpose"` // funding, assignment_payment, test_payment, refund, adjustment, withdrawal
	AmountKobo        int64  `gorm:"not null" json:"amount_kobo"`           // always > 0; Type says which direction
	BalanceBeforeKobo int64  `gorm:"not null" json:"balance_before_kobo"`
	BalanceAfterKobo  int64  `gorm:"not null" json:"balance_after_kobo"`
	Reference         string `gorm:"size:128;uniqueIndex;not null" json:"reference"`
	// PaymentKey dedupes submission payments: sourceType:sourceID:submissionID.
	// Nullable so non-submission rows don't collide on the unique index.
	PaymentKey  *string        `gorm:"size:160;uniqueIndex" json:"-"`
	Status      string         `gorm:"size:20;not null;index" json:"status"` // completed | pending
	Description string         `gorm:"size:255" json:"description"`
	Metadata    string         `gorm:"type:text" json:"metadata"` // JSON: counterparty ids, split breakdown, admin id
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Wallet Wallet `gorm:"foreignKey:WalletID" json:"-"`
}

func (Transaction) TableName() string { return "transactions" }

// PaymentMetadata is the typed metadata payload for submission payments. It
// carries the full split breakdown so a replayed request can reconstruct the
// original result from the debit row alone.
type PaymentMetadata struct {
	SourceType     string `json:"source_type"`
	SourceID       uint   `json:"source_id"`
	SubmissionID   uint   `json:"submission_id"`
	CounterpartyID uint   `json:"counterparty_id"`
	LecturerKobo   int64  `json:"lecturer_kobo"`
	PartnerKobo    int64  `json:"partner_kobo"`
	PlatformKobo   int64  `json:"platform_kobo"`
	PartnerID      uint   `json:"partner_id,omitempty"`
	PartnerUserID  uint   `json:"partner_user_id,omitempty"`
	ReferralID     uint   `json:"referral_id,omitempty"`
	CommissionRate int    `json:"commission_rate,omitempty"`
	LecturerShare  int    `json:"lecturer_share,omitempty"`
}

// AdminMetadata is the typed metadata payload for manual adjustments.
type AdminMetadata struct {
	AdminID  uint   `json:"admin_id"`
	Reason   string `json:"reason"`
	RefundID uint   `json:"refund_id,omitempty"`
}

// WithdrawalMetadata links a withdrawal-purpose debit to its request.
type WithdrawalMetadata struct {
	WithdrawalID     uint   `json:"withdrawal_id"`
	PaymentReference string `json:"payment_reference,omitempty"`
}

// FundingMetadata records the gateway side of a funding credit.
type FundingMetadata struct {
	Gateway          string `json:"gateway"`
	GatewayReference string `json:"gateway_reference"`
	VerifiedAt       string `json:"verified_at,omitempty"`
}
