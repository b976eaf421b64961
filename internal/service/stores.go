package service

import (
	"campuspay/internal/models"
	"campuspay/internal/repository"

	"gorm.io/gorm"
)

// TxRunner executes fn inside a database transaction. Production wiring uses
// GormTxRunner; tests inject a runner that calls fn directly.
type TxRunner func(fn func(tx *gorm.DB) error) error

func GormTxRunner(db *gorm.DB) TxRunner {
	return func(fn func(tx *gorm.DB) error) error {
		return db.Transaction(fn)
	}
}

// Store interfaces are the slices of the gorm repositories the money services
// touch. Services depend on these so the balance logic is testable without a
// database.

type walletStore interface {
	GetByUserID(userID uint) (*models.Wallet, error)
	GetOrCreate(userID uint) (*models.Wallet, error)
	GetByUserIDForUpdate(tx *gorm.DB, userID uint) (*models.Wallet, error)
	GetByIDForUpdate(tx *gorm.DB, id uint) (*models.Wallet, error)
	ApplyCredit(tx *gorm.DB, w *models.Wallet, amountKobo int64) error
	ApplyDebit(tx *gorm.DB, w *models.Wallet, amountKobo int64) error
	ApplyFunding(tx *gorm.DB, w *models.Wallet, amountKobo int64) error
}

type transactionStore interface {
	Create(tx *gorm.DB, t *models.Transaction) error
	GetByID(id uint) (*models.Transaction, error)
	GetByReference(ref string) (*models.Transaction, error)
	GetByPaymentKey(tx *gorm.DB, key string) (*models.Transaction, error)
	Complete(tx *gorm.DB, id uint) error
	Settle(tx *gorm.DB, id uint, balanceBeforeKobo, balanceAfterKobo int64) (bool, error)
}

type earningStore interface {
	CreateLecturerEarning(e *models.LecturerEarning) error
	CreatePartnerEarning(e *models.PartnerEarning) error
	MarkLecturerEarningsWithdrawn(lecturerID uint) error
}

type referralStatser interface {
	IncrementReferralStats(referralID uint, revenueKobo int64) error
}

type refundStore interface {
	Create(tx *gorm.DB, ref *models.Refund) error
	GetByID(id uint) (*models.Refund, error)
}

type withdrawalStore interface {
	Create(w *models.WithdrawalRequest) error
	GetByID(id uint) (*models.WithdrawalRequest, error)
	GetByIDForUpdate(tx *gorm.DB, id uint) (*models.WithdrawalRequest, error)
	Update(tx *gorm.DB, w *models.WithdrawalRequest) error
	SumPendingByUser(userID uint) (int64, error)
}

// Notifier is the outbound notification boundary. Every call is best-effort:
// implementations log failures and never propagate them into money paths.
type Notifier interface {
	PaymentProcessed(studentID, lecturerID, partnerUserID uint, split Split, reference string)
	WalletAdjusted(userID uint, txType string, amountKobo int64, reason string)
	RefundProcessed(userID uint, amountKobo int64, reason string)
	WithdrawalUpdated(userID, withdrawalID uint, status string, amountKobo int64)
	WalletFunded(userID uint, amountKobo int64)
}

// EventPublisher pushes ledger events to connected websocket clients.
type EventPublisher interface {
	Publish(userID uint, event string, payload interface{})
}

var (
	_ walletStore      = (*repository.WalletRepository)(nil)
	_ transactionStore = (*repository.TransactionRepository)(nil)
	_ earningStore     = (*repository.EarningRepository)(nil)
	_ referralStatser  = (*repository.PartnerRepository)(nil)
	_ refundStore      = (*repository.RefundRepository)(nil)
	_ withdrawalStore  = (*repository.WithdrawalRepository)(nil)
)
