package repository

import (
	"time"

	"campuspay/internal/domain"
	"campuspay/internal/models"

	"gorm.io/gorm"
)

// ReportRepository serves the admin dashboard's aggregate queries.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

type DashboardStats struct {
	TotalUsers            int64 `json:"total_users"`
	TotalWallets          int64 `json:"total_wallets"`
	TotalBalanceKobo      int64 `json:"total_balance_kobo"`
	TransactionsToday     int64 `json:"transactions_today"`
	PaymentVolumeKobo     int64 `json:"payment_volume_kobo"`      // submission payments, last 30 days
	FundingVolumeKobo     int64 `json:"funding_volume_kobo"`      // funding credits, last 30 days
	PendingWithdrawals    int64 `json:"pending_withdrawals"`
	PendingWithdrawalKobo int64 `json:"pending_withdrawal_kobo"`
}

func (r *ReportRepository) Dashboard() (*DashboardStats, error) {
	var s DashboardStats
	if err := r.db.Model(&models.User{}).Count(&s.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Wallet{}).Count(&s.TotalWallets).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Wallet{}).Select("COALESCE(SUM(balance_kobo), 0)").Scan(&s.TotalBalanceKobo).Error; err != nil {
		return nil, err
	}
	midnight := time.Now().Truncate(24 * time.Hour)
	if err := r.db.Model(&models.Transaction{}).Where("created_at >= ?", midnight).Count(&s.TransactionsToday).Error; err != nil {
		return nil, err
	}
	monthAgo := time.Now().AddDate(0, 0, -30)
	if err := r.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount_kobo), 0)").
		Where("purpose IN ? AND type = ? AND status = ? AND created_at >= ?",
			[]string{domain.TxPurposeAssignmentPayment, domain.TxPurposeTestPayment},
			domain.TxTypeDebit, domain.TxStatusCompleted, monthAgo).
		Scan(&s.PaymentVolumeKobo).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount_kobo), 0)").
		Where("purpose = ? AND status = ? AND created_at >= ?",
			domain.TxPurposeFunding, domain.TxStatusCompleted, monthAgo).
		Scan(&s.FundingVolumeKobo).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.WithdrawalRequest{}).
		Where("status = ?", domain.WithdrawalStatusPending).Count(&s.PendingWithdrawals).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&models.WithdrawalRequest{}).
		Select("COALESCE(SUM(amount_kobo), 0)").
		Where("status = ?", domain.WithdrawalStatusPending).
		Scan(&s.PendingWithdrawalKobo).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
