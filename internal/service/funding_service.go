package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"campuspay/internal/domain"
	"campuspay/internal/models"
	"campuspay/pkg/paystack"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gateway is the slice of the Paystack client the funding flow needs.
type gateway interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyResponse, error)
}

// FundingService handles wallet top-ups: initialize a checkout session with a
// pending funding transaction, then credit the wallet once the gateway
// confirms payment (via explicit verify or webhook).
type FundingService struct {
	runTx    TxRunner
	wallets  walletStore
	txns     transactionStore
	gateway  gateway
	callback string
	notifier Notifier
	events   EventPublisher
}

func NewFundingService(runTx TxRunner, wallets walletStore, txns transactionStore, gw gateway, callbackURL string, notifier Notifier, events EventPublisher) *FundingService {
	return &FundingService{
		runTx:    runTx,
		wallets:  wallets,
		txns:     txns,
		gateway:  gw,
		callback: callbackURL,
		notifier: notifier,
		events:   events,
	}
}

// FundingSession is returned to the client to complete checkout.
type FundingSession struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AmountKobo       int64  `json:"amount_kobo"`
}

// Initialize starts a funding session. A pending funding transaction is
// appended immediately so verification has a row to complete; the balance is
// untouched until the gateway confirms.
func (s *FundingService) Initialize(ctx context.Context, userID uint, email string, amountKobo int64) (*FundingSession, error) {
	if amountKobo < domain.MinFundingKobo || amountKobo > domain.MaxFundingKobo {
		return nil, ErrFundingLimit
	}
	wallet, err := s.wallets.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}

	reference := "fund_" + uuid.NewString()
	session, err := s.gateway.Initialize(ctx, paystack.InitializeRequest{
		Email:       email,
		AmountKobo:  amountKobo,
		Reference:   reference,
		CallbackURL: s.callback,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize checkout: %w", err)
	}

	meta, _ := json.Marshal(models.FundingMetadata{Gateway: "paystack", GatewayReference: reference})
	txn := &models.Transaction{
		WalletID:          wallet.ID,
		Type:              domain.TxTypeCredit,
		Purpose:           domain.TxPurposeFunding,
		AmountKobo:        amountKobo,
		BalanceBeforeKobo: wallet.BalanceKobo,
		BalanceAfterKobo:  wallet.BalanceKobo, // unchanged until verified
		Reference:         reference,
		Status:            domain.TxStatusPending,
		Description:       "wallet funding",
		Metadata:          string(meta),
	}
	if err := s.txns.Create(nil, txn); err != nil {
		return nil, err
	}

	return &FundingSession{
		Reference:        reference,
		AuthorizationURL: session.AuthorizationURL,
		AmountKobo:       amountKobo,
	}, nil
}

// Confirm verifies a funding reference with the gateway and credits the
// wallet. Safe to call more than once: an already-completed transaction is a
// no-op returning the prior row.
func (s *FundingService) Confirm(ctx context.Context, reference string) (*models.Transaction, error) {
	txn, err := s.txns.GetByReference(reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	if txn.Status == domain.TxStatusCompleted {
		return txn, nil
	}

	v, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", reference, err)
	}
	if v.Status != "success" {
		return nil, ErrFundingNotConfirmed
	}
	if v.AmountKobo != txn.AmountKobo {
		return nil, fmt.Errorf("gateway amount %d does not match ledger amount %d for %s", v.AmountKobo, txn.AmountKobo, reference)
	}
	return s.settle(txn, v.PaidAt)
}

// ConfirmFromWebhook credits a wallet from an already-authenticated webhook
// event. The handler has checked the signature; amounts are still rechecked.
func (s *FundingService) ConfirmFromWebhook(ev *paystack.WebhookEvent) error {
	if ev.Event != "charge.success" {
		return nil
	}
	txn, err := s.txns.GetByReference(ev.Data.Reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Funding] webhook for unknown reference %s", ev.Data.Reference)
			return nil
		}
		return err
	}
	if txn.Status == domain.TxStatusCompleted {
		return nil
	}
	if ev.Data.AmountKobo != txn.AmountKobo {
		return fmt.Errorf("webhook amount %d does not match ledger amount %d for %s", ev.Data.AmountKobo, txn.AmountKobo, ev.Data.Reference)
	}
	_, err = s.settle(txn, ev.Data.PaidAt)
	return err
}

func (s *FundingService) settle(txn *models.Transaction, paidAt string) (*models.Transaction, error) {
	var userID uint
	settled := false
	err := s.runTx(func(tx *gorm.DB) error {
		w, err := s.wallets.GetByIDForUpdate(tx, txn.WalletID)
		if err != nil {
			return err
		}
		// The row was read before this transaction started; a racing verify
		// or webhook for the same reference may have settled it already.
		// Settle flips pending rows only and stamps the balance window the
		// credit moves through, so balance_after always equals
		// balance_before + amount on the completed row.
		ok, err := s.txns.Settle(tx, txn.ID, w.BalanceKobo, w.BalanceKobo+txn.AmountKobo)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := s.wallets.ApplyFunding(tx, w, txn.AmountKobo); err != nil {
			return err
		}
		userID = w.UserID
		settled = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	fresh, err := s.txns.GetByID(txn.ID)
	if err != nil {
		fresh = txn
		fresh.Status = domain.TxStatusCompleted
	}
	if !settled {
		return fresh, nil
	}

	if paidAt == "" {
		paidAt = time.Now().UTC().Format(time.RFC3339)
	}
	log.Printf("[Funding] credited wallet %d with %d kobo (ref=%s, paid_at=%s)", txn.WalletID, txn.AmountKobo, txn.Reference, paidAt)

	if s.notifier != nil {
		s.notifier.WalletFunded(userID, txn.AmountKobo)
	}
	if s.events != nil {
		s.events.Publish(userID, "wallet.funded", map[string]interface{}{
			"reference":   txn.Reference,
			"amount_kobo": txn.AmountKobo,
		})
	}
	return fresh, nil
}
