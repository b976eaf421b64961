package database

import (
	"log"

	"campuspay/config"
	"campuspay/internal/domain"
	"campuspay/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
		TranslateError: true,                                 // duplicate-key errors become gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.Transaction{},
		&models.Partner{},
		&models.Referral{},
		&models.LecturerEarning{},
		&models.PartnerEarning{},
		&models.Refund{},
		&models.WithdrawalRequest{},
		&models.Notification{},
		&models.AuditLog{},
		&models.SystemSetting{},
	)
}

// SeedAdmin creates the bootstrap admin account if ADMIN_PASSWORD is set and
// no admin with that email exists yet.
func SeedAdmin(db *gorm.DB, cfg *config.AdminConfig) {
	if cfg.Password == "" {
		return
	}
	var count int64
	db.Model(&models.User{}).Where("email = ?", cfg.Email).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[Seed] failed to hash admin password: %v", err)
		return
	}
	admin := &models.User{
		Email:        cfg.Email,
		FirstName:    "Platform",
		LastName:     "Admin",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		log.Printf("[Seed] failed to create admin user: %v", err)
		return
	}
	log.Printf("[Seed] admin user created: %s", cfg.Email)
}

// SeedSettings inserts default revenue-split settings if missing.
func SeedSettings(db *gorm.DB) {
	defaults := map[string]string{
		domain.SettingLecturerSharePercent:  "50",
		domain.SettingDefaultCommissionRate: "15",
	}
	for k, v := range defaults {
		var count int64
		db.Model(&models.SystemSetting{}).Where("`key` = ?", k).Count(&count)
		if count == 0 {
			if err := db.Create(&models.SystemSetting{Key: k, Value: v}).Error; err != nil {
				log.Printf("[Seed] failed to seed setting %s: %v", k, err)
			}
		}
	}
}
