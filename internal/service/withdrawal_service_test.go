package service

import (
	"testing"

	"campuspay/internal/domain"
	"campuspay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWithdrawalService(w *fakeWallets, wd *fakeWithdrawals, txns *fakeTxns, earnings *fakeEarnings, n *fakeNotifier) *WithdrawalService {
	var notifier Notifier
	if n != nil {
		notifier = n
	}
	return NewWithdrawalService(testRunner(w, txns), wd, w, txns, earnings, notifier, nil)
}

func createInput() CreateInput {
	return CreateInput{
		UserID:        2,
		AmountKobo:    500,
		BankName:      "GTBank",
		AccountNumber: "0123456789",
		AccountName:   "A Lecturer",
	}
}

func TestWithdrawalCreate(t *testing.T) {
	t.Run("files a pending request", func(t *testing.T) {
		w := newFakeWallets()
		w.add(2, 1000)
		wd := newFakeWithdrawals()
		notifier := &fakeNotifier{}
		svc := newWithdrawalService(w, wd, newFakeTxns(), &fakeEarnings{}, notifier)

		req, err := svc.Create(createInput())
		require.NoError(t, err)
		assert.Equal(t, domain.WithdrawalStatusPending, req.Status)
		assert.Equal(t, int64(1000), w.byUser[2].BalanceKobo, "creating a request moves no money")
		require.Len(t, notifier.calls, 1)
		assert.Equal(t, "withdrawal:pending", notifier.calls[0].kind)
	})

	t.Run("counts earlier pending requests against the balance", func(t *testing.T) {
		w := newFakeWallets()
		w.add(2, 1000)
		wd := newFakeWithdrawals()
		svc := newWithdrawalService(w, wd, newFakeTxns(), &fakeEarnings{}, nil)

		_, err := svc.Create(createInput())
		require.NoError(t, err)
		in := createInput()
		in.AmountKobo = 600
		_, err = svc.Create(in)
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("requires a wallet", func(t *testing.T) {
		svc := newWithdrawalService(newFakeWallets(), newFakeWithdrawals(), newFakeTxns(), &fakeEarnings{}, nil)
		_, err := svc.Create(createInput())
		assert.ErrorIs(t, err, ErrWalletNotFound)
	})
}

func TestWithdrawalApprove(t *testing.T) {
	setup := func(balance int64) (*fakeWallets, *fakeWithdrawals, *fakeTxns, *WithdrawalService) {
		w := newFakeWallets()
		w.add(2, balance)
		wd := newFakeWithdrawals()
		txns := newFakeTxns()
		svc := newWithdrawalService(w, wd, txns, &fakeEarnings{}, nil)
		return w, wd, txns, svc
	}

	t.Run("reserves the payout out of the wallet", func(t *testing.T) {
		w, _, txns, svc := setup(1000)
		req, err := svc.Create(createInput())
		require.NoError(t, err)

		approved, err := svc.Approve(req.ID, 1, "looks good")
		require.NoError(t, err)
		assert.Equal(t, domain.WithdrawalStatusApproved, approved.Status)
		require.NotNil(t, approved.TransactionID)
		assert.Equal(t, int64(500), w.byUser[2].BalanceKobo)

		rows := txns.byPurpose(domain.TxPurposeWithdrawal)
		require.Len(t, rows, 1)
		assert.Equal(t, domain.TxStatusPending, rows[0].Status)
		assert.Equal(t, domain.TxTypeDebit, rows[0].Type)
	})

	t.Run("only pending requests can be approved", func(t *testing.T) {
		_, _, _, svc := setup(1000)
		req, err := svc.Create(createInput())
		require.NoError(t, err)
		_, err = svc.Approve(req.ID, 1, "")
		require.NoError(t, err)
		_, err = svc.Approve(req.ID, 1, "")
		assert.ErrorIs(t, err, ErrInvalidWithdrawalState)
	})

	t.Run("balance drained since filing blocks approval", func(t *testing.T) {
		w, wd, txns, svc := setup(1000)
		req, err := svc.Create(createInput())
		require.NoError(t, err)
		w.byUser[2].BalanceKobo = 100 // spent in the meantime

		_, err = svc.Approve(req.ID, 1, "")
		assert.ErrorIs(t, err, ErrInsufficientBalance)
		got, _ := wd.GetByID(req.ID)
		assert.Equal(t, domain.WithdrawalStatusPending, got.Status)
		assert.Empty(t, txns.byPurpose(domain.TxPurposeWithdrawal))
	})

	t.Run("unknown request", func(t *testing.T) {
		_, _, _, svc := setup(1000)
		_, err := svc.Approve(99, 1, "")
		assert.ErrorIs(t, err, ErrWithdrawalNotFound)
	})
}

func TestWithdrawalReject(t *testing.T) {
	w := newFakeWallets()
	w.add(2, 1000)
	wd := newFakeWithdrawals()
	svc := newWithdrawalService(w, wd, newFakeTxns(), &fakeEarnings{}, nil)
	req, err := svc.Create(createInput())
	require.NoError(t, err)

	rejected, err := svc.Reject(req.ID, 1, "bank details do not match")
	require.NoError(t, err)
	assert.Equal(t, domain.WithdrawalStatusRejected, rejected.Status)
	assert.Equal(t, "bank details do not match", rejected.RejectionReason)
	assert.Equal(t, int64(1000), w.byUser[2].BalanceKobo, "rejection moves no money")

	_, err = svc.Reject(req.ID, 1, "again")
	assert.ErrorIs(t, err, ErrInvalidWithdrawalState)
}

func TestWithdrawalMarkPaid(t *testing.T) {
	t.Run("completes the reserved transaction", func(t *testing.T) {
		w := newFakeWallets()
		w.add(2, 1000)
		wd := newFakeWithdrawals()
		txns := newFakeTxns()
		earnings := &fakeEarnings{lecturer: []*models.LecturerEarning{
			{LecturerID: 2, AmountKobo: 425, Status: domain.EarningStatusPending},
		}}
		notifier := &fakeNotifier{}
		svc := newWithdrawalService(w, wd, txns, earnings, notifier)

		req, err := svc.Create(createInput())
		require.NoError(t, err)
		_, err = svc.Approve(req.ID, 1, "")
		require.NoError(t, err)

		paid, err := svc.MarkPaid(req.ID, 1, "TRF-2024-0001")
		require.NoError(t, err)
		assert.Equal(t, domain.WithdrawalStatusPaid, paid.Status)
		assert.Equal(t, "TRF-2024-0001", paid.PaymentReference)

		rows := txns.byPurpose(domain.TxPurposeWithdrawal)
		require.Len(t, rows, 1)
		assert.Equal(t, domain.TxStatusCompleted, rows[0].Status)
		assert.Equal(t, domain.EarningStatusWithdrawn, earnings.lecturer[0].Status)
		assert.Equal(t, "withdrawal:paid", notifier.calls[len(notifier.calls)-1].kind)
	})

	t.Run("pending requests cannot be marked paid", func(t *testing.T) {
		w := newFakeWallets()
		w.add(2, 1000)
		wd := newFakeWithdrawals()
		svc := newWithdrawalService(w, wd, newFakeTxns(), &fakeEarnings{}, nil)
		req, err := svc.Create(createInput())
		require.NoError(t, err)
		_, err = svc.MarkPaid(req.ID, 1, "TRF-1")
		assert.ErrorIs(t, err, ErrInvalidWithdrawalState)
	})

	t.Run("rejected requests cannot be marked paid", func(t *testing.T) {
		w := newFakeWallets()
		w.add(2, 1000)
		wd := newFakeWithdrawals()
		svc := newWithdrawalService(w, wd, newFakeTxns(), &fakeEarnings{}, nil)
		req, err := svc.Create(createInput())
		require.NoError(t, err)
		_, err = svc.Reject(req.ID, 1, "no")
		require.NoError(t, err)
		_, err = svc.MarkPaid(req.ID, 1, "TRF-1")
		assert.ErrorIs(t, err, ErrInvalidWithdrawalState)
	})
}
