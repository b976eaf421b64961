package models

import (
	"time"

	"gorm.io/gorm"
)

// Refund records an admin-processed refund. Always paired with a credit
// transaction of purpose "refund"; if that transaction fails to append the
// refund row survives unlinked (reconciled out of band).
type Refund struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	TransactionID *uint          `gorm:"index" json:"transaction_id"` // original transaction being refunded, if any
	AmountKobo    int64          `gorm:"not null" json:"amount_kobo"`
	Reason        string         `gorm:"size:255;not null" json:"reason"`
	RefundType    string         `gorm:"size:10;not null" json:"refund_type"` // full | partial
	Status        string         `gorm:"size:20;not null;index" json:"status"`
	ProcessedBy   uint           `gorm:"not null" json:"processed_by"` // admin user id
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Refund) TableName() string { return "refunds" }
