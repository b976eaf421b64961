package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"campuspay/internal/domain"
	"campuspay/internal/models"
	"campuspay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Minimal in-memory stores, just enough for the handler paths under test.

type memWallets struct {
	byUser map[uint]*models.Wallet
}

func (m *memWallets) GetByUserID(userID uint) (*models.Wallet, error) {
	return m.GetByUserIDForUpdate(nil, userID)
}

func (m *memWallets) GetOrCreate(userID uint) (*models.Wallet, error) {
	return m.GetByUserIDForUpdate(nil, userID)
}

func (m *memWallets) GetByUserIDForUpdate(_ *gorm.DB, userID uint) (*models.Wallet, error) {
	w, ok := m.byUser[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return w, nil
}

func (m *memWallets) GetByIDForUpdate(_ *gorm.DB, id uint) (*models.Wallet, error) {
	for _, w := range m.byUser {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memWallets) ApplyCredit(_ *gorm.DB, w *models.Wallet, amountKobo int64) error {
	w.BalanceKobo += amountKobo
	return nil
}

func (m *memWallets) ApplyDebit(_ *gorm.DB, w *models.Wallet, amountKobo int64) error {
	w.BalanceKobo -= amountKobo
	return nil
}

func (m *memWallets) ApplyFunding(_ *gorm.DB, w *models.Wallet, amountKobo int64) error {
	w.BalanceKobo += amountKobo
	return nil
}

type memTxns struct {
	rows  []*models.Transaction
	byKey map[string]*models.Transaction
}

func (m *memTxns) Create(_ *gorm.DB, t *models.Transaction) error {
	t.ID = uint(len(m.rows) + 1)
	m.rows = append(m.rows, t)
	if t.PaymentKey != nil {
		m.byKey[*t.PaymentKey] = t
	}
	return nil
}

func (m *memTxns) GetByID(id uint) (*models.Transaction, error) {
	for _, t := range m.rows {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memTxns) GetByReference(ref string) (*models.Transaction, error) {
	for _, t := range m.rows {
		if t.Reference == ref {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memTxns) GetByPaymentKey(_ *gorm.DB, key string) (*models.Transaction, error) {
	if t, ok := m.byKey[key]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memTxns) Complete(_ *gorm.DB, id uint) error { return nil }

func (m *memTxns) Settle(_ *gorm.DB, id uint, beforeKobo, afterKobo int64) (bool, error) {
	for _, t := range m.rows {
		if t.ID == id && t.Status == domain.TxStatusPending {
			t.Status = domain.TxStatusCompleted
			t.BalanceBeforeKobo = beforeKobo
			t.BalanceAfterKobo = afterKobo
			return true, nil
		}
	}
	return false, nil
}

type fixedSplits struct{ split service.Split }

func (f fixedSplits) Resolve(_ uint, grossKobo int64) (service.Split, error) {
	s := f.split
	s.GrossKobo = grossKobo
	return s, nil
}

func newPaymentRouter(wallets *memWallets, txns *memTxns) *gin.Engine {
	gin.SetMode(gin.TestMode)
	runTx := func(fn func(tx *gorm.DB) error) error { return fn(nil) }
	splits := fixedSplits{split: service.Split{
		LecturerKobo:  425,
		PartnerKobo:   0,
		PlatformKobo:  575,
		LecturerShare: 50,
	}}
	svc := service.NewPaymentService(runTx, wallets, txns, splits, nil, nil, nil, nil)
	h := NewPaymentHandler(svc)

	r := gin.New()
	r.POST("/payments/submission", func(c *gin.Context) {
		c.Set("user_id", uint(1))
	}, h.PaySubmission)
	return r
}

func payBody(amount int64) []byte {
	b, _ := json.Marshal(gin.H{
		"lecturer_id":   2,
		"source_type":   domain.SourceTypeAssignmentSubmission,
		"source_id":     10,
		"submission_id": 100,
		"amount_kobo":   amount,
	})
	return b
}

func postJSON(r *gin.Engine, body []byte) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/submission", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	return rec
}

func TestPaySubmission(t *testing.T) {
	setup := func(studentBalance int64) (*memWallets, *memTxns, *gin.Engine) {
		wallets := &memWallets{byUser: map[uint]*models.Wallet{
			1: {ID: 1, UserID: 1, BalanceKobo: studentBalance},
			2: {ID: 2, UserID: 2},
		}}
		txns := &memTxns{byKey: map[string]*models.Transaction{}}
		return wallets, txns, newPaymentRouter(wallets, txns)
	}

	t.Run("successful payment", func(t *testing.T) {
		wallets, txns, r := setup(5000)
		rec := postJSON(r, payBody(1000))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var out service.PaymentResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		assert.NotEmpty(t, out.Reference)
		assert.False(t, out.AlreadyProcessed)
		assert.Equal(t, int64(425), out.Split.LecturerKobo)
		assert.Equal(t, int64(4000), wallets.byUser[1].BalanceKobo)
		assert.Equal(t, int64(425), wallets.byUser[2].BalanceKobo)
		assert.Len(t, txns.rows, 2)
	})

	t.Run("replay returns 200 with the original reference", func(t *testing.T) {
		_, _, r := setup(5000)
		first := postJSON(r, payBody(1000))
		require.Equal(t, http.StatusCreated, first.Code)
		var a service.PaymentResult
		require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))

		second := postJSON(r, payBody(1000))
		require.Equal(t, http.StatusOK, second.Code)
		var b service.PaymentResult
		require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
		assert.True(t, b.AlreadyProcessed)
		assert.Equal(t, a.Reference, b.Reference)
	})

	t.Run("insufficient balance maps to 402", func(t *testing.T) {
		_, _, r := setup(100)
		rec := postJSON(r, payBody(1000))
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	})

	t.Run("missing wallet maps to 404", func(t *testing.T) {
		wallets, txns, _ := setup(5000)
		delete(wallets.byUser, 1)
		r := newPaymentRouter(wallets, txns)
		rec := postJSON(r, payBody(1000))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad source type maps to 400", func(t *testing.T) {
		_, _, r := setup(5000)
		body, _ := json.Marshal(gin.H{
			"lecturer_id":   2,
			"source_type":   "project_submission",
			"source_id":     10,
			"submission_id": 100,
			"amount_kobo":   1000,
		})
		rec := postJSON(r, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing fields map to 400", func(t *testing.T) {
		_, _, r := setup(5000)
		rec := postJSON(r, []byte(`{}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
