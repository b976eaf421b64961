package repository

import (
	"strconv"

	"campuspay/internal/models"

	"gorm.io/gorm"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Get(key string) (string, error) {
	var s models.SystemSetting
	err := r.db.Where("`key` = ?", key).First(&s).Error
	if err != nil {
		return "", err
	}
	return s.Value, nil
}

// GetInt reads an integer setting, falling back to def when the key is
// missing or malformed. Split percentages go through here, so a bad value
// degrades to the compiled default instead of breaking payments.
func (r *SettingRepository) GetInt(key string, def int) int {
	v, err := r.Get(key)
	if err != nil {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (r *SettingRepository) Set(key, value string) error {
	var s models.SystemSetting
	err := r.db.Where("`key` = ?", key).First(&s).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(&models.SystemSetting{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	s.Value = value
	return r.db.Save(&s).Error
}

func (r *SettingRepository) List() ([]models.SystemSetting, error) {
	var settings []models.SystemSetting
	err := r.db.Order("`key` ASC").Find(&settings).Error
	return settings, err
}
