package repository

import (
	"time"

	"campuspay/internal/domain"
	"campuspay/internal/models"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *TransactionRepository) Create(tx *gorm.DB, t *models.Transaction) error {
	return r.conn(tx).Create(t).Error
}

func (r *TransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByReference(ref string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.Where("reference = ?", ref).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByPaymentKey looks up a prior submission payment for idempotent replays.
func (r *TransactionRepository) GetByPaymentKey(tx *gorm.DB, key string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.conn(tx).Where("payment_key = ?", key).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Complete flips a pending transaction to completed. The only status update
// the ledger permits.
func (r *TransactionRepository) Complete(tx *gorm.DB, id uint) error {
	return r.conn(tx).Model(&models.Transaction{}).Where("id = ? AND status = ?", id, domain.TxStatusPending).
		Update("status", domain.TxStatusCompleted).Error
}

// Settle completes a pending funding credit and stamps the balance window the
// credit actually moved through, which is only known at settle time. Returns
// false when the row was no longer pending, so a racing settle of the same
// reference credits the wallet exactly once.
func (r *TransactionRepository) Settle(tx *gorm.DB, id uint, balanceBeforeKobo, balanceAfterKobo int64) (bool, error) {
	res := r.conn(tx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, domain.TxStatusPending).
		Updates(map[string]interface{}{
			"status":              domain.TxStatusCompleted,
			"balance_before_kobo": balanceBeforeKobo,
			"balance_after_kobo":  balanceAfterKobo,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *TransactionRepository) ListByWallet(walletID uint, limit, offset int) ([]models.Transaction, int64, error) {
	var txns []models.Transaction
	var total int64
	q := r.db.Model(&models.Transaction{}).Where("wallet_id = ?", walletID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&txns).Error
	return txns, total, err
}

func (r *TransactionRepository) ListByPurpose(purpose string, limit, offset int) ([]models.Transaction, int64, error) {
	var txns []models.Transaction
	var total int64
	q := r.db.Model(&models.Transaction{}).Where("purpose = ?", purpose)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&txns).Error
	return txns, total, err
}

// SumByPurpose totals completed transaction amounts for a purpose since a
// cutoff, for the admin dashboard.
func (r *TransactionRepository) SumByPurpose(purpose string, since time.Time) (int64, error) {
	var total int64
	err := r.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount_kobo), 0)").
		Where("purpose = ? AND status = ? AND created_at >= ?", purpose, domain.TxStatusCompleted, since).
		Scan(&total).Error
	return total, err
}

func (r *TransactionRepository) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Transaction{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}
