package models

import (
	"time"

	"campuspay/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FirstName    string         `gorm:"size:100" json:"first_name"`
	LastName     string         `gorm:"size:100" json:"last_name"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // STUDENT | LECTURER | PARTNER | ADMIN
	StaffID      string         `gorm:"size:64" json:"staff_id,omitempty"`
	Department   string         `gorm:"size:128" json:"department,omitempty"`
	FCMToken     string         `gorm:"size:512" json:"-"` // For push notifications
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Wallet *Wallet `gorm:"foreignKey:UserID" json:"wallet,omitempty"`
}

func (u *User) IsStudent() bool  { return u.Role == domain.RoleStudent }
func (u *User) IsLecturer() bool { return u.Role == domain.RoleLecturer }
func (u *User) IsAdmin() bool    { return u.Role == domain.RoleAdmin }

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (User) TableName() string { return "users" }
