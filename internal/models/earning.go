package models

import (
	"time"

	"gorm.io/gorm"
)

// LecturerEarning is a denormalized payout-reporting row written after a
// submission payment commits. Derived from, never authoritative over, the
// transaction ledger.
type LecturerEarning struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	LecturerID    uint           `gorm:"not null;index" json:"lecturer_id"`
	TransactionID uint           `gorm:"not null;index" json:"transaction_id"`
	AmountKobo    int64          `gorm:"not null" json:"amount_kobo"`
	SourceType    string         `gorm:"size:30;not null;index" json:"source_type"` // assignment_submission | test_submission
	SourceID      uint           `gorm:"not null" json:"source_id"`
	SubmissionID  uint           `gorm:"not null" json:"submission_id"`
	StudentID     uint           `gorm:"not null" json:"student_id"`
	Status        string         `gorm:"size:20;not null;index;default:'pending'" json:"status"` // pending | withdrawn
	CreatedAt     time.Time      `json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LecturerEarning) TableName() string { return "lecturer_earnings" }

// PartnerEarning records the commission slice of a submission payment for a
// referring partner.
type PartnerEarning struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	PartnerID        uint           `gorm:"not null;index" json:"partner_id"`
	ReferralID       uint           `gorm:"not null;index" json:"referral_id"`
	TransactionID    uint           `gorm:"not null;index" json:"transaction_id"`
	AmountKobo       int64          `gorm:"not null" json:"amount_kobo"`
	CommissionRate   int            `gorm:"not null" json:"commission_rate"`
	SourceAmountKobo int64          `gorm:"not null" json:"source_amount_kobo"`
	LecturerKobo     int64          `gorm:"not null" json:"lecturer_kobo"`
	SourceType       string         `gorm:"size:30;not null;index" json:"source_type"`
	SourceID         uint           `gorm:"not null" json:"source_id"`
	SubmissionID     uint           `gorm:"not null" json:"submission_id"`
	StudentID        uint           `gorm:"not null" json:"student_id"`
	Status           string         `gorm:"size:20;not null;index;default:'pending'" json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (PartnerEarning) TableName() string { return "partner_earnings" }
