package repository

import (
	"campuspay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *WithdrawalRepository) Create(w *models.WithdrawalRequest) error {
	return r.db.Create(w).Error
}

func (r *WithdrawalRepository) GetByID(id uint) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	err := r.db.First(&w, id).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetByIDForUpdate locks the request row so concurrent admin reviews of the
// same withdrawal serialize.
func (r *WithdrawalRepository) GetByIDForUpdate(tx *gorm.DB, id uint) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, id).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) Update(tx *gorm.DB, w *models.WithdrawalRequest) error {
	return r.conn(tx).Save(w).Error
}

func (r *WithdrawalRepository) ListByUser(userID uint, limit, offset int) ([]models.WithdrawalRequest, error) {
	var reqs []models.WithdrawalRequest
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&reqs).Error
	return reqs, err
}

func (r *WithdrawalRepository) ListByStatus(status string, limit, offset int) ([]models.WithdrawalRequest, int64, error) {
	var reqs []models.WithdrawalRequest
	var total int64
	q := r.db.Model(&models.WithdrawalRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("User").Order("created_at ASC").Limit(limit).Offset(offset).Find(&reqs).Error
	return reqs, total, err
}

// SumPendingByUser totals the amounts of a user's unsettled requests, used to
// cap what a new request may ask for.
func (r *WithdrawalRepository) SumPendingByUser(userID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.WithdrawalRequest{}).
		Select("COALESCE(SUM(amount_kobo), 0)").
		Where("user_id = ? AND status = ?", userID, "pending").
		Scan(&total).Error
	return total, err
}
