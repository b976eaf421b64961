package repository

import (
	"campuspay/internal/models"

	"gorm.io/gorm"
)

type RefundRepository struct {
	db *gorm.DB
}

func NewRefundRepository(db *gorm.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

func (r *RefundRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *RefundRepository) Create(tx *gorm.DB, ref *models.Refund) error {
	return r.conn(tx).Create(ref).Error
}

func (r *RefundRepository) GetByID(id uint) (*models.Refund, error) {
	var ref models.Refund
	err := r.db.First(&ref, id).Error
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *RefundRepository) ListByUser(userID uint, limit, offset int) ([]models.Refund, error) {
	var refunds []models.Refund
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&refunds).Error
	return refunds, err
}

func (r *RefundRepository) List(limit, offset int) ([]models.Refund, int64, error) {
	var refunds []models.Refund
	var total int64
	if err := r.db.Model(&models.Refund{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&refunds).Error
	return refunds, total, err
}
