package service

import (
	"context"
	"testing"

	"campuspay/internal/domain"
	"campuspay/pkg/paystack"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	initErr      error
	verifyStatus string
	verifyAmount int64
	verifyErr    error
}

func (g *stubGateway) Initialize(_ context.Context, req paystack.InitializeRequest) (*paystack.InitializeResponse, error) {
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &paystack.InitializeResponse{
		AuthorizationURL: "https://checkout.paystack.com/abc123",
		Reference:        req.Reference,
	}, nil
}

func (g *stubGateway) Verify(_ context.Context, reference string) (*paystack.VerifyResponse, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return &paystack.VerifyResponse{
		Status:     g.verifyStatus,
		Reference:  reference,
		AmountKobo: g.verifyAmount,
	}, nil
}

func newFundingService(w *fakeWallets, txns *fakeTxns, gw gateway, n *fakeNotifier) *FundingService {
	var notifier Notifier
	if n != nil {
		notifier = n
	}
	return NewFundingService(testRunner(w, txns), w, txns, gw, "", notifier, nil)
}

func TestFundingInitialize(t *testing.T) {
	t.Run("creates a pending funding transaction", func(t *testing.T) {
		w := newFakeWallets()
		txns := newFakeTxns()
		svc := newFundingService(w, txns, &stubGateway{}, nil)

		session, err := svc.Initialize(context.Background(), 1, "s@uni.edu", 50_000)
		require.NoError(t, err)
		assert.NotEmpty(t, session.AuthorizationURL)
		assert.NotEmpty(t, session.Reference)

		rows := txns.byPurpose(domain.TxPurposeFunding)
		require.Len(t, rows, 1)
		assert.Equal(t, domain.TxStatusPending, rows[0].Status)
		assert.Equal(t, int64(0), w.byUser[1].BalanceKobo, "balance untouched until verified")
	})

	t.Run("enforces funding limits", func(t *testing.T) {
		svc := newFundingService(newFakeWallets(), newFakeTxns(), &stubGateway{}, nil)
		_, err := svc.Initialize(context.Background(), 1, "s@uni.edu", domain.MinFundingKobo-1)
		assert.ErrorIs(t, err, ErrFundingLimit)
		_, err = svc.Initialize(context.Background(), 1, "s@uni.edu", domain.MaxFundingKobo+1)
		assert.ErrorIs(t, err, ErrFundingLimit)
	})

	t.Run("gateway failure creates no ledger row", func(t *testing.T) {
		txns := newFakeTxns()
		svc := newFundingService(newFakeWallets(), txns, &stubGateway{initErr: assert.AnError}, nil)
		_, err := svc.Initialize(context.Background(), 1, "s@uni.edu", 50_000)
		assert.Error(t, err)
		assert.Empty(t, txns.rows)
	})
}

func TestFundingConfirm(t *testing.T) {
	start := func(gw *stubGateway) (*fakeWallets, *fakeTxns, *FundingService, string) {
		w := newFakeWallets()
		txns := newFakeTxns()
		notifier := &fakeNotifier{}
		svc := newFundingService(w, txns, gw, notifier)
		session, err := svc.Initialize(context.Background(), 1, "s@uni.edu", 50_000)
		require.NoError(t, err)
		return w, txns, svc, session.Reference
	}

	t.Run("credits the wallet once the gateway confirms", func(t *testing.T) {
		w, txns, svc, ref := start(&stubGateway{verifyStatus: "success", verifyAmount: 50_000})
		txn, err := svc.Confirm(context.Background(), ref)
		require.NoError(t, err)
		assert.Equal(t, domain.TxStatusCompleted, txn.Status)
		assert.Equal(t, int64(50_000), w.byUser[1].BalanceKobo)
		assert.Equal(t, int64(50_000), w.byUser[1].TotalFundedKobo)
		assert.Equal(t, domain.TxStatusCompleted, txns.rows[0].Status)
	})

	t.Run("settled row carries the balance window it moved through", func(t *testing.T) {
		w, txns, svc, ref := start(&stubGateway{verifyStatus: "success", verifyAmount: 50_000})
		w.byUser[1].BalanceKobo = 7_000 // funded through another channel before verifying

		txn, err := svc.Confirm(context.Background(), ref)
		require.NoError(t, err)
		assert.Equal(t, int64(7_000), txn.BalanceBeforeKobo)
		assert.Equal(t, int64(57_000), txn.BalanceAfterKobo)
		assert.Equal(t, txn.BalanceBeforeKobo+txn.AmountKobo, txn.BalanceAfterKobo)
		assert.Equal(t, txns.rows[0].BalanceAfterKobo, w.byUser[1].BalanceKobo,
			"wallet must equal the latest transaction's balance_after")
	})

	t.Run("verify racing the webhook credits only once", func(t *testing.T) {
		w, txns, svc, ref := start(&stubGateway{verifyStatus: "success", verifyAmount: 50_000})
		row, err := txns.GetByReference(ref)
		require.NoError(t, err)

		// Both paths read the row while it was still pending.
		stale1 := *row
		stale2 := *row
		_, err = svc.settle(&stale1, "")
		require.NoError(t, err)
		_, err = svc.settle(&stale2, "")
		require.NoError(t, err)
		assert.Equal(t, int64(50_000), w.byUser[1].BalanceKobo, "second settle of the same reference must be a no-op")
		assert.Equal(t, int64(50_000), w.byUser[1].TotalFundedKobo)
	})

	t.Run("re-verifying is a no-op", func(t *testing.T) {
		w, _, svc, ref := start(&stubGateway{verifyStatus: "success", verifyAmount: 50_000})
		_, err := svc.Confirm(context.Background(), ref)
		require.NoError(t, err)
		_, err = svc.Confirm(context.Background(), ref)
		require.NoError(t, err)
		assert.Equal(t, int64(50_000), w.byUser[1].BalanceKobo, "wallet must not be credited twice")
	})

	t.Run("unconfirmed payment credits nothing", func(t *testing.T) {
		w, _, svc, ref := start(&stubGateway{verifyStatus: "abandoned"})
		_, err := svc.Confirm(context.Background(), ref)
		assert.ErrorIs(t, err, ErrFundingNotConfirmed)
		assert.Equal(t, int64(0), w.byUser[1].BalanceKobo)
	})

	t.Run("gateway amount mismatch credits nothing", func(t *testing.T) {
		w, _, svc, ref := start(&stubGateway{verifyStatus: "success", verifyAmount: 10_000})
		_, err := svc.Confirm(context.Background(), ref)
		assert.Error(t, err)
		assert.Equal(t, int64(0), w.byUser[1].BalanceKobo)
	})

	t.Run("unknown reference", func(t *testing.T) {
		svc := newFundingService(newFakeWallets(), newFakeTxns(), &stubGateway{}, nil)
		_, err := svc.Confirm(context.Background(), "fund_nope")
		assert.ErrorIs(t, err, ErrWalletNotFound)
	})
}

func TestFundingConfirmFromWebhook(t *testing.T) {
	t.Run("charge success credits the wallet", func(t *testing.T) {
		w := newFakeWallets()
		txns := newFakeTxns()
		svc := newFundingService(w, txns, &stubGateway{}, nil)
		session, err := svc.Initialize(context.Background(), 1, "s@uni.edu", 50_000)
		require.NoError(t, err)

		err = svc.ConfirmFromWebhook(&paystack.WebhookEvent{
			Event: "charge.success",
			Data:  paystack.VerifyResponse{Reference: session.Reference, AmountKobo: 50_000},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(50_000), w.byUser[1].BalanceKobo)
	})

	t.Run("other events are ignored", func(t *testing.T) {
		svc := newFundingService(newFakeWallets(), newFakeTxns(), &stubGateway{}, nil)
		err := svc.ConfirmFromWebhook(&paystack.WebhookEvent{Event: "transfer.success"})
		assert.NoError(t, err)
	})

	t.Run("unknown reference is swallowed", func(t *testing.T) {
		svc := newFundingService(newFakeWallets(), newFakeTxns(), &stubGateway{}, nil)
		err := svc.ConfirmFromWebhook(&paystack.WebhookEvent{
			Event: "charge.success",
			Data:  paystack.VerifyResponse{Reference: "fund_nope", AmountKobo: 1},
		})
		assert.NoError(t, err)
	})
}
