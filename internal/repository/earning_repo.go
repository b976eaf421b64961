package repository

import (
	"campuspay/internal/models"

	"gorm.io/gorm"
)

type EarningRepository struct {
	db *gorm.DB
}

func NewEarningRepository(db *gorm.DB) *EarningRepository {
	return &EarningRepository{db: db}
}

func (r *EarningRepository) CreateLecturerEarning(e *models.LecturerEarning) error {
	return r.db.Create(e).Error
}

func (r *EarningRepository) CreatePartnerEarning(e *models.PartnerEarning) error {
	return r.db.Create(e).Error
}

func (r *EarningRepository) ListLecturerEarnings(lecturerID uint, limit, offset int) ([]models.LecturerEarning, int64, error) {
	var earnings []models.LecturerEarning
	var total int64
	q := r.db.Model(&models.LecturerEarning{}).Where("lecturer_id = ?", lecturerID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&earnings).Error
	return earnings, total, err
}

func (r *EarningRepository) ListPartnerEarnings(partnerID uint, limit, offset int) ([]models.PartnerEarning, int64, error) {
	var earnings []models.PartnerEarning
	var total int64
	q := r.db.Model(&models.PartnerEarning{}).Where("partner_id = ?", partnerID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&earnings).Error
	return earnings, total, err
}

func (r *EarningRepository) SumLecturerEarnings(lecturerID uint, status string) (int64, error) {
	var total int64
	q := r.db.Model(&models.LecturerEarning{}).Select("COALESCE(SUM(amount_kobo), 0)").
		Where("lecturer_id = ?", lecturerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Scan(&total).Error
	return total, err
}

func (r *EarningRepository) SumPartnerEarnings(partnerID uint, status string) (int64, error) {
	var total int64
	q := r.db.Model(&models.PartnerEarning{}).Select("COALESCE(SUM(amount_kobo), 0)").
		Where("partner_id = ?", partnerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Scan(&total).Error
	return total, err
}

// MarkLecturerEarningsWithdrawn flips pending earnings to withdrawn once a
// payout covering them is paid.
func (r *EarningRepository) MarkLecturerEarningsWithdrawn(lecturerID uint) error {
	return r.db.Model(&models.LecturerEarning{}).
		Where("lecturer_id = ? AND status = ?", lecturerID, "pending").
		Update("status", "withdrawn").Error
}
