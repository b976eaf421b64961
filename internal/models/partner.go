package models

import (
	"time"

	"gorm.io/gorm"
)

// Partner is a referring business that earns commission on submissions made
// to lecturers it referred.
type Partner struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	PartnerCode    string         `gorm:"uniqueIndex;size:20;not null" json:"partner_code"`
	BusinessName   string         `gorm:"size:255" json:"business_name"`
	CommissionRate int            `gorm:"not null;default:15" json:"commission_rate"` // percent of gross
	Status         string         `gorm:"size:20;not null;index" json:"status"`       // active | suspended
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Partner) TableName() string { return "partners" }

// Referral binds a lecturer to the partner that recruited them. A lecturer
// can only be referred once.
type Referral struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	PartnerID          uint           `gorm:"not null;index" json:"partner_id"`
	ReferredLecturerID uint           `gorm:"uniqueIndex;not null" json:"referred_lecturer_id"`
	ReferralCode       string         `gorm:"size:20" json:"referral_code"`
	Status             string         `gorm:"size:20;not null;index;default:'active'" json:"status"`
	TotalSubmissions   int            `gorm:"not null;default:0" json:"total_submissions"`
	TotalRevenueKobo   int64          `gorm:"not null;default:0" json:"total_revenue_kobo"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Partner          Partner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	ReferredLecturer User    `gorm:"foreignKey:ReferredLecturerID" json:"referred_lecturer,omitempty"`
}

func (Referral) TableName() string { return "referrals" }
