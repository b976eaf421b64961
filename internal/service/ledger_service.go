package service

import (
	"encoding/json"
	"errors"

	"campuspay/internal/domain"
	"campuspay/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerService is the admin adjustment path: manual credits, manual debits
// and refunds. Every adjustment appends a completed transaction carrying the
// acting admin's id and reason in metadata.
type LedgerService struct {
	runTx    TxRunner
	wallets  walletStore
	txns     transactionStore
	refunds  refundStore
	notifier Notifier
	events   EventPublisher
}

func NewLedgerService(runTx TxRunner, wallets walletStore, txns transactionStore, refunds refundStore, notifier Notifier, events EventPublisher) *LedgerService {
	return &LedgerService{
		runTx:    runTx,
		wallets:  wallets,
		txns:     txns,
		refunds:  refunds,
		notifier: notifier,
		events:   events,
	}
}

// CreditWallet credits a user's wallet manually. The wallet is created on
// first credit if it does not exist yet.
func (s *LedgerService) CreditWallet(userID uint, amountKobo int64, adminID uint, reason string) (*models.Transaction, error) {
	if amountKobo <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := s.wallets.GetOrCreate(userID); err != nil {
		return nil, err
	}
	var txn *models.Transaction
	err := s.runTx(func(tx *gorm.DB) error {
		w, err := s.wallets.GetByUserIDForUpdate(tx, userID)
		if err != nil {
			return err
		}
		meta, _ := json.Marshal(models.AdminMetadata{AdminID: adminID, Reason: reason})
		txn = &models.Transaction{
			WalletID:          w.ID,
			Type:              domain.TxTypeCredit,
			Purpose:           domain.TxPurposeAdjustment,
			AmountKobo:        amountKobo,
			BalanceBeforeKobo: w.BalanceKobo,
			BalanceAfterKobo:  w.BalanceKobo + amountKobo,
			Reference:         "adj_" + uuid.NewString(),
			Status:            domain.TxStatusCompleted,
			Description:       reason,
			Metadata:          string(meta),
		}
		if err := s.txns.Create(tx, txn); err != nil {
			return err
		}
		return s.wallets.ApplyCredit(tx, w, amountKobo)
	})
	if err != nil {
		return nil, err
	}
	s.afterAdjustment(userID, domain.TxTypeCredit, amountKobo, reason)
	return txn, nil
}

// DebitWallet debits a user's wallet manually, floored at zero: the debit is
// rejected outright when the balance cannot cover it.
func (s *LedgerService) DebitWallet(userID uint, amountKobo int64, adminID uint, reason string) (*models.Transaction, error) {
	if amountKobo <= 0 {
		return nil, ErrInvalidAmount
	}
	var txn *models.Transaction
	err := s.runTx(func(tx *gorm.DB) error {
		w, err := s.wallets.GetByUserIDForUpdate(tx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound
			}
			return err
		}
		if w.BalanceKobo < amountKobo {
			return ErrInsufficientBalance
		}
		meta, _ := json.Marshal(models.AdminMetadata{AdminID: adminID, Reason: reason})
		txn = &models.Transaction{
			WalletID:          w.ID,
			Type:              domain.TxTypeDebit,
			Purpose:           domain.TxPurposeAdjustment,
			AmountKobo:        amountKobo,
			BalanceBeforeKobo: w.BalanceKobo,
			BalanceAfterKobo:  w.BalanceKobo - amountKobo,
			Reference:         "adj_" + uuid.NewString(),
			Status:            domain.TxStatusCompleted,
			Description:       reason,
			Metadata:          string(meta),
		}
		if err := s.txns.Create(tx, txn); err != nil {
			return err
		}
		return s.wallets.ApplyDebit(tx, w, amountKobo)
	})
	if err != nil {
		return nil, err
	}
	s.afterAdjustment(userID, domain.TxTypeDebit, amountKobo, reason)
	return txn, nil
}

// RefundInput describes an admin-initiated refund back into a user's wallet.
type RefundInput struct {
	UserID        uint
	TransactionID *uint // original charge being refunded, optional
	AmountKobo    int64
	Reason        string
	RefundType    string // full | partial
	AdminID       uint
}

// ProcessRefund credits the user and records a refund row plus a refund
// transaction, all in one database transaction. A partial refund may not
// exceed the original transaction's amount.
func (s *LedgerService) ProcessRefund(in RefundInput) (*models.Refund, error) {
	if in.AmountKobo <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.RefundType != domain.RefundTypeFull && in.RefundType != domain.RefundTypePartial {
		return nil, errors.New("refund type must be full or partial")
	}
	if in.TransactionID != nil {
		orig, err := s.txns.GetByID(*in.TransactionID)
		if err != nil {
			return nil, err
		}
		if in.AmountKobo > orig.AmountKobo {
			return nil, ErrRefundExceedsOriginal
		}
		if in.RefundType == domain.RefundTypeFull && in.AmountKobo != orig.AmountKobo {
			return nil, errors.New("full refund must match the original amount")
		}
	}

	if _, err := s.wallets.GetOrCreate(in.UserID); err != nil {
		return nil, err
	}

	refund := &models.Refund{
		UserID:        in.UserID,
		TransactionID: in.TransactionID,
		AmountKobo:    in.AmountKobo,
		Reason:        in.Reason,
		RefundType:    in.RefundType,
		Status:        domain.TxStatusCompleted,
		ProcessedBy:   in.AdminID,
	}
	err := s.runTx(func(tx *gorm.DB) error {
		w, err := s.wallets.GetByUserIDForUpdate(tx, in.UserID)
		if err != nil {
			return err
		}
		if err := s.refunds.Create(tx, refund); err != nil {
			return err
		}
		meta, _ := json.Marshal(models.AdminMetadata{AdminID: in.AdminID, Reason: in.Reason, RefundID: refund.ID})
		txn := &models.Transaction{
			WalletID:          w.ID,
			Type:              domain.TxTypeCredit,
			Purpose:           domain.TxPurposeRefund,
			AmountKobo:        in.AmountKobo,
			BalanceBeforeKobo: w.BalanceKobo,
			BalanceAfterKobo:  w.BalanceKobo + in.AmountKobo,
			Reference:         "rfd_" + uuid.NewString(),
			Status:            domain.TxStatusCompleted,
			Description:       in.Reason,
			Metadata:          string(meta),
		}
		if err := s.txns.Create(tx, txn); err != nil {
			return err
		}
		return s.wallets.ApplyCredit(tx, w, in.AmountKobo)
	})
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.RefundProcessed(in.UserID, in.AmountKobo, in.Reason)
	}
	if s.events != nil {
		s.events.Publish(in.UserID, "wallet.credited", map[string]interface{}{
			"amount_kobo": in.AmountKobo,
			"purpose":     domain.TxPurposeRefund,
		})
	}
	return refund, nil
}

func (s *LedgerService) afterAdjustment(userID uint, txType string, amountKobo int64, reason string) {
	if s.notifier != nil {
		s.notifier.WalletAdjusted(userID, txType, amountKobo, reason)
	}
	if s.events != nil {
		event := "wallet.credited"
		if txType == domain.TxTypeDebit {
			event = "wallet.debited"
		}
		s.events.Publish(userID, event, map[string]interface{}{"amount_kobo": amountKobo})
	}
}
