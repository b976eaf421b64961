package service

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"campuspay/internal/domain"
	"campuspay/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WithdrawalService runs the payout request lifecycle. Funds leave the wallet
// at approval time: approving debits the wallet and appends a pending
// withdrawal transaction, so an approved request can always be paid. Marking
// paid completes that transaction; rejection leaves the wallet untouched.
type WithdrawalService struct {
	runTx       TxRunner
	withdrawals withdrawalStore
	wallets     walletStore
	txns        transactionStore
	earnings    earningStore
	notifier    Notifier
	events      EventPublisher
}

func NewWithdrawalService(
	runTx TxRunner,
	withdrawals withdrawalStore,
	wallets walletStore,
	txns transactionStore,
	earnings earningStore,
	notifier Notifier,
	events EventPublisher,
) *WithdrawalService {
	return &WithdrawalService{
		runTx:       runTx,
		withdrawals: withdrawals,
		wallets:     wallets,
		txns:        txns,
		earnings:    earnings,
		notifier:    notifier,
		events:      events,
	}
}

// CreateInput is a lecturer's or partner's payout request.
type CreateInput struct {
	UserID        uint
	AmountKobo    int64
	BankName      string
	AccountNumber string
	AccountName   string
}

// Create files a new withdrawal request. The amount must be covered by the
// current balance minus what earlier pending requests already ask for, so an
// admin approving requests in order never hits an uncovered one.
func (s *WithdrawalService) Create(in CreateInput) (*models.WithdrawalRequest, error) {
	if in.AmountKobo <= 0 {
		return nil, ErrInvalidAmount
	}
	w, err := s.wallets.GetByUserID(in.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	pending, err := s.withdrawals.SumPendingByUser(in.UserID)
	if err != nil {
		return nil, err
	}
	if w.BalanceKobo-pending < in.AmountKobo {
		return nil, ErrInsufficientBalance
	}
	req := &models.WithdrawalRequest{
		UserID:        in.UserID,
		AmountKobo:    in.AmountKobo,
		BankName:      in.BankName,
		AccountNumber: in.AccountNumber,
		AccountName:   in.AccountName,
		Status:        domain.WithdrawalStatusPending,
	}
	if err := s.withdrawals.Create(req); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.WithdrawalUpdated(in.UserID, req.ID, req.Status, req.AmountKobo)
	}
	return req, nil
}

// Approve moves pending -> approved and reserves the payout: the wallet is
// debited and a pending withdrawal transaction is linked to the request.
func (s *WithdrawalService) Approve(requestID, adminID uint, notes string) (*models.WithdrawalRequest, error) {
	var req *models.WithdrawalRequest
	err := s.runTx(func(tx *gorm.DB) error {
		var err error
		req, err = s.withdrawals.GetByIDForUpdate(tx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWithdrawalNotFound
			}
			return err
		}
		if req.Status != domain.WithdrawalStatusPending {
			return ErrInvalidWithdrawalState
		}

		w, err := s.wallets.GetByUserIDForUpdate(tx, req.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound
			}
			return err
		}
		if w.BalanceKobo < req.AmountKobo {
			return ErrInsufficientBalance
		}

		meta, _ := json.Marshal(models.WithdrawalMetadata{WithdrawalID: req.ID})
		txn := &models.Transaction{
			WalletID:          w.ID,
			Type:              domain.TxTypeDebit,
			Purpose:           domain.TxPurposeWithdrawal,
			AmountKobo:        req.AmountKobo,
			BalanceBeforeKobo: w.BalanceKobo,
			BalanceAfterKobo:  w.BalanceKobo - req.AmountKobo,
			Reference:         "wdr_" + uuid.NewString(),
			Status:            domain.TxStatusPending,
			Description:       "withdrawal payout",
			Metadata:          string(meta),
		}
		if err := s.txns.Create(tx, txn); err != nil {
			return err
		}
		if err := s.wallets.ApplyDebit(tx, w, req.AmountKobo); err != nil {
			return err
		}

		now := time.Now()
		req.Status = domain.WithdrawalStatusApproved
		req.ReviewNotes = notes
		req.ReviewedBy = &adminID
		req.ReviewedAt = &now
		req.TransactionID = &txn.ID
		return s.withdrawals.Update(tx, req)
	})
	if err != nil {
		return nil, err
	}
	s.announce(req)
	return req, nil
}

// Reject moves pending -> rejected. No money moves.
func (s *WithdrawalService) Reject(requestID, adminID uint, reason string) (*models.WithdrawalRequest, error) {
	var req *models.WithdrawalRequest
	err := s.runTx(func(tx *gorm.DB) error {
		var err error
		req, err = s.withdrawals.GetByIDForUpdate(tx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWithdrawalNotFound
			}
			return err
		}
		if req.Status != domain.WithdrawalStatusPending {
			return ErrInvalidWithdrawalState
		}
		now := time.Now()
		req.Status = domain.WithdrawalStatusRejected
		req.RejectionReason = reason
		req.ReviewedBy = &adminID
		req.ReviewedAt = &now
		return s.withdrawals.Update(tx, req)
	})
	if err != nil {
		return nil, err
	}
	s.announce(req)
	return req, nil
}

// MarkPaid moves approved -> paid once the bank transfer has gone out,
// completing the reserved transaction and stamping the external payment
// reference.
func (s *WithdrawalService) MarkPaid(requestID, adminID uint, paymentReference string) (*models.WithdrawalRequest, error) {
	var req *models.WithdrawalRequest
	err := s.runTx(func(tx *gorm.DB) error {
		var err error
		req, err = s.withdrawals.GetByIDForUpdate(tx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWithdrawalNotFound
			}
			return err
		}
		if req.Status != domain.WithdrawalStatusApproved {
			return ErrInvalidWithdrawalState
		}
		if req.TransactionID != nil {
			if err := s.txns.Complete(tx, *req.TransactionID); err != nil {
				return err
			}
		}
		now := time.Now()
		req.Status = domain.WithdrawalStatusPaid
		req.PaymentReference = paymentReference
		req.PaidBy = &adminID
		req.PaidAt = &now
		return s.withdrawals.Update(tx, req)
	})
	if err != nil {
		return nil, err
	}
	if s.earnings != nil {
		// Best-effort rollup; the ledger already reflects the money movement.
		if err := s.earnings.MarkLecturerEarningsWithdrawn(req.UserID); err != nil {
			log.Printf("[Withdrawal] failed to mark earnings withdrawn for user %d: %v", req.UserID, err)
		}
	}
	s.announce(req)
	return req, nil
}

func (s *WithdrawalService) announce(req *models.WithdrawalRequest) {
	if req == nil {
		return
	}
	if s.notifier != nil {
		s.notifier.WithdrawalUpdated(req.UserID, req.ID, req.Status, req.AmountKobo)
	}
	if s.events != nil {
		s.events.Publish(req.UserID, "withdrawal."+req.Status, map[string]interface{}{
			"withdrawal_id": req.ID,
			"amount_kobo":   req.AmountKobo,
		})
	}
}
