package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"campuspay/internal/domain"
	"campuspay/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentInput describes one submission payment: a student paying a lecturer
// for grading an assignment or test submission.
type PaymentInput struct {
	StudentID    uint
	LecturerID   uint
	SourceType   string // assignment_submission | test_submission
	SourceID     uint
	SubmissionID uint
	AmountKobo   int64
	Description  string
}

// PaymentResult is what a successful (or idempotently replayed) payment
// returns to the caller.
type PaymentResult struct {
	Reference        string `json:"reference"`
	Split            Split  `json:"split"`
	StudentBalance   int64  `json:"student_balance_kobo"`
	AlreadyProcessed bool   `json:"already_processed"`
}

type splitResolver interface {
	Resolve(lecturerID uint, grossKobo int64) (Split, error)
}

// PaymentService moves money for submission payments: debit the student,
// credit the lecturer, credit the referring partner, all inside a single
// database transaction with the wallet rows locked. The platform slice stays
// unledgered; it is the remainder recorded in transaction metadata.
type PaymentService struct {
	runTx     TxRunner
	wallets   walletStore
	txns      transactionStore
	splits    splitResolver
	earnings  earningStore
	referrals referralStatser
	notifier  Notifier
	events    EventPublisher
}

func NewPaymentService(
	runTx TxRunner,
	wallets walletStore,
	txns transactionStore,
	splits splitResolver,
	earnings earningStore,
	referrals referralStatser,
	notifier Notifier,
	events EventPublisher,
) *PaymentService {
	return &PaymentService{
		runTx:     runTx,
		wallets:   wallets,
		txns:      txns,
		splits:    splits,
		earnings:  earnings,
		referrals: referrals,
		notifier:  notifier,
		events:    events,
	}
}

// PaymentKey builds the idempotency key for a submission payment. One
// submission is paid for at most once regardless of retries.
func PaymentKey(sourceType string, sourceID, submissionID uint) string {
	return fmt.Sprintf("%s:%d:%d", sourceType, sourceID, submissionID)
}

func purposeForSource(sourceType string) (string, error) {
	switch sourceType {
	case domain.SourceTypeAssignmentSubmission:
		return domain.TxPurposeAssignmentPayment, nil
	case domain.SourceTypeTestSubmission:
		return domain.TxPurposeTestPayment, nil
	default:
		return "", ErrInvalidSourceType
	}
}

// ProcessSubmissionPayment executes the full debit-and-split. On any failure
// inside the transaction every leg rolls back together, so a debited student
// can never be left without the matching lecturer credit. Replaying the same
// submission returns the original result with AlreadyProcessed set.
func (s *PaymentService) ProcessSubmissionPayment(in PaymentInput) (*PaymentResult, error) {
	if in.AmountKobo <= 0 {
		return nil, ErrInvalidAmount
	}
	purpose, err := purposeForSource(in.SourceType)
	if err != nil {
		return nil, err
	}

	split, err := s.splits.Resolve(in.LecturerID, in.AmountKobo)
	if err != nil {
		return nil, err
	}

	key := PaymentKey(in.SourceType, in.SourceID, in.SubmissionID)
	result := &PaymentResult{Split: split}

	var lecturerTxnID uint
	err = s.runTx(func(tx *gorm.DB) error {
		// Idempotency check inside the transaction so a concurrent retry
		// either sees the prior row or collides on the unique payment_key.
		if found, err := s.replayPrior(tx, key, result); err != nil {
			return err
		} else if found {
			return nil
		}

		studentWallet, err := s.wallets.GetByUserIDForUpdate(tx, in.StudentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound
			}
			return err
		}
		if studentWallet.BalanceKobo < in.AmountKobo {
			return ErrInsufficientBalance
		}

		lecturerWallet, err := s.wallets.GetByUserIDForUpdate(tx, in.LecturerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLecturerWalletNotFound
			}
			return err
		}

		var partnerWallet *models.Wallet
		if split.PartnerKobo > 0 {
			partnerWallet, err = s.wallets.GetByUserIDForUpdate(tx, split.PartnerUserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Partner without a wallet: fail open, their slice
					// falls to the platform remainder.
					log.Printf("[Payment] partner %d has no wallet, folding commission into platform", split.PartnerID)
					split.PlatformKobo += split.PartnerKobo
					split.PartnerKobo = 0
					split.PartnerID = 0
					split.PartnerUserID = 0
					split.ReferralID = 0
					result.Split = split
				} else {
					return err
				}
			}
		}

		meta, _ := json.Marshal(models.PaymentMetadata{
			SourceType:     in.SourceType,
			SourceID:       in.SourceID,
			SubmissionID:   in.SubmissionID,
			CounterpartyID: in.LecturerID,
			LecturerKobo:   split.LecturerKobo,
			PartnerKobo:    split.PartnerKobo,
			PlatformKobo:   split.PlatformKobo,
			PartnerID:      split.PartnerID,
			PartnerUserID:  split.PartnerUserID,
			ReferralID:     split.ReferralID,
			CommissionRate: split.CommissionRate,
			LecturerShare:  split.LecturerShare,
		})

		reference := "pay_" + uuid.NewString()
		debit := &models.Transaction{
			WalletID:          studentWallet.ID,
			Type:              domain.TxTypeDebit,
			Purpose:           purpose,
			AmountKobo:        in.AmountKobo,
			BalanceBeforeKobo: studentWallet.BalanceKobo,
			BalanceAfterKobo:  studentWallet.BalanceKobo - in.AmountKobo,
			Reference:         reference,
			PaymentKey:        &key,
			Status:            domain.TxStatusCompleted,
			Description:       in.Description,
			Metadata:          string(meta),
		}
		if err := s.txns.Create(tx, debit); err != nil {
			// A concurrent retry that slipped past the pre-check lands here
			// on the unique payment_key index. Return the winner's result
			// when it is visible; ErrDuplicatePayment only when it is not
			// committed yet.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				if found, perr := s.replayPrior(tx, key, result); perr == nil && found {
					return nil
				}
				return ErrDuplicatePayment
			}
			return err
		}
		if err := s.wallets.ApplyDebit(tx, studentWallet, in.AmountKobo); err != nil {
			return err
		}

		lecturerMeta, _ := json.Marshal(models.PaymentMetadata{
			SourceType:     in.SourceType,
			SourceID:       in.SourceID,
			SubmissionID:   in.SubmissionID,
			CounterpartyID: in.StudentID,
			LecturerKobo:   split.LecturerKobo,
			PartnerKobo:    split.PartnerKobo,
			PlatformKobo:   split.PlatformKobo,
			PartnerID:      split.PartnerID,
			PartnerUserID:  split.PartnerUserID,
			ReferralID:     split.ReferralID,
			CommissionRate: split.CommissionRate,
			LecturerShare:  split.LecturerShare,
		})
		credit := &models.Transaction{
			WalletID:          lecturerWallet.ID,
			Type:              domain.TxTypeCredit,
			Purpose:           purpose,
			AmountKobo:        split.LecturerKobo,
			BalanceBeforeKobo: lecturerWallet.BalanceKobo,
			BalanceAfterKobo:  lecturerWallet.BalanceKobo + split.LecturerKobo,
			Reference:         "pay_" + uuid.NewString(),
			Status:            domain.TxStatusCompleted,
			Description:       in.Description,
			Metadata:          string(lecturerMeta),
		}
		if err := s.txns.Create(tx, credit); err != nil {
			return fmt.Errorf("%w: %v", ErrCreditFailed, err)
		}
		if err := s.wallets.ApplyCredit(tx, lecturerWallet, split.LecturerKobo); err != nil {
			return fmt.Errorf("%w: %v", ErrCreditFailed, err)
		}
		lecturerTxnID = credit.ID

		if partnerWallet != nil && split.PartnerKobo > 0 {
			commission := &models.Transaction{
				WalletID:          partnerWallet.ID,
				Type:              domain.TxTypeCredit,
				Purpose:           purpose,
				AmountKobo:        split.PartnerKobo,
				BalanceBeforeKobo: partnerWallet.BalanceKobo,
				BalanceAfterKobo:  partnerWallet.BalanceKobo + split.PartnerKobo,
				Reference:         "pay_" + uuid.NewString(),
				Status:            domain.TxStatusCompleted,
				Description:       "referral commission",
				Metadata:          string(meta),
			}
			if err := s.txns.Create(tx, commission); err != nil {
				return fmt.Errorf("%w: %v", ErrCreditFailed, err)
			}
			if err := s.wallets.ApplyCredit(tx, partnerWallet, split.PartnerKobo); err != nil {
				return fmt.Errorf("%w: %v", ErrCreditFailed, err)
			}
		}

		result.Reference = reference
		result.StudentBalance = studentWallet.BalanceKobo
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.AlreadyProcessed {
		return result, nil
	}

	s.recordEarnings(in, result.Split, lecturerTxnID)
	s.announce(in, result.Split, result.Reference)
	return result, nil
}

// replayPrior reconstructs the original result from the debit row a previous
// attempt wrote under the same payment key. Reports false when no such row is
// visible.
func (s *PaymentService) replayPrior(tx *gorm.DB, key string, result *PaymentResult) (bool, error) {
	prior, err := s.txns.GetByPaymentKey(tx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	result.Reference = prior.Reference
	result.AlreadyProcessed = true
	result.StudentBalance = prior.BalanceAfterKobo
	var meta models.PaymentMetadata
	if json.Unmarshal([]byte(prior.Metadata), &meta) == nil {
		result.Split = Split{
			GrossKobo:      prior.AmountKobo,
			LecturerKobo:   meta.LecturerKobo,
			PartnerKobo:    meta.PartnerKobo,
			PlatformKobo:   meta.PlatformKobo,
			PartnerID:      meta.PartnerID,
			PartnerUserID:  meta.PartnerUserID,
			ReferralID:     meta.ReferralID,
			CommissionRate: meta.CommissionRate,
			LecturerShare:  meta.LecturerShare,
		}
	}
	return true, nil
}

// recordEarnings writes the denormalized reporting rows after the ledger
// commit. Failures are logged and swallowed; the ledger is the source of
// truth and reporting rows can be rebuilt from it.
func (s *PaymentService) recordEarnings(in PaymentInput, split Split, lecturerTxnID uint) {
	if s.earnings == nil {
		return
	}
	if err := s.earnings.CreateLecturerEarning(&models.LecturerEarning{
		LecturerID:    in.LecturerID,
		TransactionID: lecturerTxnID,
		AmountKobo:    split.LecturerKobo,
		SourceType:    in.SourceType,
		SourceID:      in.SourceID,
		SubmissionID:  in.SubmissionID,
		StudentID:     in.StudentID,
		Status:        domain.EarningStatusPending,
	}); err != nil {
		log.Printf("[Payment] failed to record lecturer earning for txn %d: %v", lecturerTxnID, err)
	}
	if split.PartnerKobo > 0 && split.PartnerID != 0 {
		if err := s.earnings.CreatePartnerEarning(&models.PartnerEarning{
			PartnerID:        split.PartnerID,
			ReferralID:       split.ReferralID,
			TransactionID:    lecturerTxnID,
			AmountKobo:       split.PartnerKobo,
			CommissionRate:   split.CommissionRate,
			SourceAmountKobo: split.GrossKobo,
			LecturerKobo:     split.LecturerKobo,
			SourceType:       in.SourceType,
			SourceID:         in.SourceID,
			SubmissionID:     in.SubmissionID,
			StudentID:        in.StudentID,
			Status:           domain.EarningStatusPending,
		}); err != nil {
			log.Printf("[Payment] failed to record partner earning for partner %d: %v", split.PartnerID, err)
		}
		if s.referrals != nil {
			if err := s.referrals.IncrementReferralStats(split.ReferralID, split.GrossKobo); err != nil {
				log.Printf("[Payment] failed to bump referral %d stats: %v", split.ReferralID, err)
			}
		}
	}
}

func (s *PaymentService) announce(in PaymentInput, split Split, reference string) {
	if s.notifier != nil {
		s.notifier.PaymentProcessed(in.StudentID, in.LecturerID, split.PartnerUserID, split, reference)
	}
	if s.events != nil {
		payload := map[string]interface{}{
			"reference":     reference,
			"source_type":   in.SourceType,
			"submission_id": in.SubmissionID,
			"amount_kobo":   in.AmountKobo,
		}
		s.events.Publish(in.StudentID, "wallet.debited", payload)
		s.events.Publish(in.LecturerID, "wallet.credited", map[string]interface{}{
			"reference":   reference,
			"amount_kobo": split.LecturerKobo,
		})
		if split.PartnerUserID != 0 && split.PartnerKobo > 0 {
			s.events.Publish(split.PartnerUserID, "wallet.credited", map[string]interface{}{
				"reference":   reference,
				"amount_kobo": split.PartnerKobo,
			})
		}
	}
}
