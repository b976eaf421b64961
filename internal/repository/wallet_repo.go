package repository

import (
	"campuspay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// conn returns the transaction handle when one is in progress, otherwise the
// shared connection. Methods that must run inside a ledger transaction take
// tx explicitly so callers can't forget.
func (r *WalletRepository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *WalletRepository) Create(w *models.Wallet) error {
	return r.db.Create(w).Error
}

func (r *WalletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Where("user_id = ?", userID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) GetOrCreate(userID uint) (*models.Wallet, error) {
	w, err := r.GetByUserID(userID)
	if err == nil {
		return w, nil
	}
	w = &models.Wallet{UserID: userID, Currency: "NGN"}
	if err := r.db.Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// GetByUserIDForUpdate loads the wallet row with a SELECT ... FOR UPDATE lock.
// Must be called inside a transaction; the lock is held until commit so two
// concurrent debits of the same wallet serialize instead of double-spending.
func (r *WalletRepository) GetByUserIDForUpdate(tx *gorm.DB, userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetByIDForUpdate locks a wallet row by primary key.
func (r *WalletRepository) GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Wallet, error) {
	var w models.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, id).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ApplyCredit persists a balance increase on an already-locked wallet.
func (r *WalletRepository) ApplyCredit(tx *gorm.DB, w *models.Wallet, amountKobo int64) error {
	w.BalanceKobo += amountKobo
	return r.conn(tx).Model(w).Update("balance_kobo", w.BalanceKobo).Error
}

// ApplyDebit persists a balance decrease on an already-locked wallet. The
// caller checks sufficiency first; this only writes.
func (r *WalletRepository) ApplyDebit(tx *gorm.DB, w *models.Wallet, amountKobo int64) error {
	w.BalanceKobo -= amountKobo
	w.TotalSpentKobo += amountKobo
	return r.conn(tx).Model(w).Updates(map[string]interface{}{
		"balance_kobo":     w.BalanceKobo,
		"total_spent_kobo": w.TotalSpentKobo,
	}).Error
}

// ApplyFunding credits a wallet and bumps its lifetime funded counter.
func (r *WalletRepository) ApplyFunding(tx *gorm.DB, w *models.Wallet, amountKobo int64) error {
	w.BalanceKobo += amountKobo
	w.TotalFundedKobo += amountKobo
	return r.conn(tx).Model(w).Updates(map[string]interface{}{
		"balance_kobo":      w.BalanceKobo,
		"total_funded_kobo": w.TotalFundedKobo,
	}).Error
}

func (r *WalletRepository) List(limit, offset int) ([]models.Wallet, int64, error) {
	var wallets []models.Wallet
	var total int64
	if err := r.db.Model(&models.Wallet{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Preload("User").Order("balance_kobo DESC").Limit(limit).Offset(offset).Find(&wallets).Error
	return wallets, total, err
}
