package service

import (
	"campuspay/internal/domain"
	"campuspay/internal/models"

	"gorm.io/gorm"
)

// In-memory store fakes. testRunner snapshots them before each transaction
// and restores on error, so tests can assert the all-or-nothing contract.

type fakeWallets struct {
	byUser    map[uint]*models.Wallet
	nextID    uint
	creditErr map[uint]error // wallet ID -> error on ApplyCredit
}

func newFakeWallets() *fakeWallets {
	return &fakeWallets{byUser: make(map[uint]*models.Wallet), nextID: 1, creditErr: make(map[uint]error)}
}

func (f *fakeWallets) add(userID uint, balance int64) *models.Wallet {
	w := &models.Wallet{ID: f.nextID, UserID: userID, BalanceKobo: balance, Currency: "NGN"}
	f.nextID++
	f.byUser[userID] = w
	return w
}

func (f *fakeWallets) GetByUserID(userID uint) (*models.Wallet, error) {
	w, ok := f.byUser[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return w, nil
}

func (f *fakeWallets) GetOrCreate(userID uint) (*models.Wallet, error) {
	if w, ok := f.byUser[userID]; ok {
		return w, nil
	}
	return f.add(userID, 0), nil
}

func (f *fakeWallets) GetByUserIDForUpdate(_ *gorm.DB, userID uint) (*models.Wallet, error) {
	return f.GetByUserID(userID)
}

func (f *fakeWallets) GetByIDForUpdate(_ *gorm.DB, id uint) (*models.Wallet, error) {
	for _, w := range f.byUser {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeWallets) ApplyCredit(_ *gorm.DB, w *models.Wallet, amountKobo int64) error {
	if err := f.creditErr[w.ID]; err != nil {
		return err
	}
	w.BalanceKobo += amountKobo
	return nil
}

func (f *fakeWallets) ApplyDebit(_ *gorm.DB, w *models.Wallet, amountKobo int64) error {
	w.BalanceKobo -= amountKobo
	w.TotalSpentKobo += amountKobo
	return nil
}

func (f *fakeWallets) ApplyFunding(_ *gorm.DB, w *models.Wallet, amountKobo int64) error {
	w.BalanceKobo += amountKobo
	w.TotalFundedKobo += amountKobo
	return nil
}

func (f *fakeWallets) snapshot() map[uint]models.Wallet {
	s := make(map[uint]models.Wallet, len(f.byUser))
	for k, v := range f.byUser {
		s[k] = *v
	}
	return s
}

func (f *fakeWallets) restore(s map[uint]models.Wallet) {
	f.byUser = make(map[uint]*models.Wallet, len(s))
	for k, v := range s {
		w := v
		f.byUser[k] = &w
	}
}

type fakeTxns struct {
	rows   []*models.Transaction
	nextID uint
}

func newFakeTxns() *fakeTxns { return &fakeTxns{nextID: 1} }

func (f *fakeTxns) Create(_ *gorm.DB, t *models.Transaction) error {
	t.ID = f.nextID
	f.nextID++
	cp := *t
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeTxns) GetByID(id uint) (*models.Transaction, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTxns) GetByReference(ref string) (*models.Transaction, error) {
	for _, r := range f.rows {
		if r.Reference == ref {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTxns) GetByPaymentKey(_ *gorm.DB, key string) (*models.Transaction, error) {
	for _, r := range f.rows {
		if r.PaymentKey != nil && *r.PaymentKey == key {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTxns) Complete(_ *gorm.DB, id uint) error {
	for _, r := range f.rows {
		if r.ID == id && r.Status == domain.TxStatusPending {
			r.Status = domain.TxStatusCompleted
		}
	}
	return nil
}

func (f *fakeTxns) Settle(_ *gorm.DB, id uint, beforeKobo, afterKobo int64) (bool, error) {
	for _, r := range f.rows {
		if r.ID == id && r.Status == domain.TxStatusPending {
			r.Status = domain.TxStatusCompleted
			r.BalanceBeforeKobo = beforeKobo
			r.BalanceAfterKobo = afterKobo
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTxns) byPurpose(purpose string) []*models.Transaction {
	var out []*models.Transaction
	for _, r := range f.rows {
		if r.Purpose == purpose {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeTxns) snapshot() ([]models.Transaction, uint) {
	s := make([]models.Transaction, len(f.rows))
	for i, r := range f.rows {
		s[i] = *r
	}
	return s, f.nextID
}

func (f *fakeTxns) restore(s []models.Transaction, nextID uint) {
	f.rows = make([]*models.Transaction, len(s))
	for i := range s {
		r := s[i]
		f.rows[i] = &r
	}
	f.nextID = nextID
}

// testRunner mimics a database transaction over the fakes: on error every
// mutation made inside fn is rolled back.
func testRunner(w *fakeWallets, t *fakeTxns) TxRunner {
	return func(fn func(tx *gorm.DB) error) error {
		wSnap := w.snapshot()
		tSnap, nextID := t.snapshot()
		if err := fn(nil); err != nil {
			w.restore(wSnap)
			t.restore(tSnap, nextID)
			return err
		}
		return nil
	}
}

type fakeEarnings struct {
	lecturer []*models.LecturerEarning
	partner  []*models.PartnerEarning
	err      error
}

func (f *fakeEarnings) CreateLecturerEarning(e *models.LecturerEarning) error {
	if f.err != nil {
		return f.err
	}
	f.lecturer = append(f.lecturer, e)
	return nil
}

func (f *fakeEarnings) CreatePartnerEarning(e *models.PartnerEarning) error {
	if f.err != nil {
		return f.err
	}
	f.partner = append(f.partner, e)
	return nil
}

func (f *fakeEarnings) MarkLecturerEarningsWithdrawn(lecturerID uint) error {
	if f.err != nil {
		return f.err
	}
	for _, e := range f.lecturer {
		if e.LecturerID == lecturerID && e.Status == domain.EarningStatusPending {
			e.Status = domain.EarningStatusWithdrawn
		}
	}
	return nil
}

type fakeReferrals struct {
	bumps map[uint]int64
	err   error
}

func (f *fakeReferrals) IncrementReferralStats(referralID uint, revenueKobo int64) error {
	if f.err != nil {
		return f.err
	}
	if f.bumps == nil {
		f.bumps = make(map[uint]int64)
	}
	f.bumps[referralID] += revenueKobo
	return nil
}

type notifierCall struct {
	kind   string
	userID uint
	amount int64
}

type fakeNotifier struct{ calls []notifierCall }

func (f *fakeNotifier) PaymentProcessed(studentID, lecturerID, partnerUserID uint, split Split, _ string) {
	f.calls = append(f.calls, notifierCall{"payment", studentID, split.GrossKobo})
	f.calls = append(f.calls, notifierCall{"payment", lecturerID, split.LecturerKobo})
	if partnerUserID != 0 {
		f.calls = append(f.calls, notifierCall{"payment", partnerUserID, split.PartnerKobo})
	}
}

func (f *fakeNotifier) WalletAdjusted(userID uint, _ string, amountKobo int64, _ string) {
	f.calls = append(f.calls, notifierCall{"adjusted", userID, amountKobo})
}

func (f *fakeNotifier) RefundProcessed(userID uint, amountKobo int64, _ string) {
	f.calls = append(f.calls, notifierCall{"refund", userID, amountKobo})
}

func (f *fakeNotifier) WithdrawalUpdated(userID, _ uint, status string, amountKobo int64) {
	f.calls = append(f.calls, notifierCall{"withdrawal:" + status, userID, amountKobo})
}

func (f *fakeNotifier) WalletFunded(userID uint, amountKobo int64) {
	f.calls = append(f.calls, notifierCall{"funded", userID, amountKobo})
}

type fakeEvents struct{ events []string }

func (f *fakeEvents) Publish(_ uint, event string, _ interface{}) {
	f.events = append(f.events, event)
}

type fakeWithdrawals struct {
	byID   map[uint]*models.WithdrawalRequest
	nextID uint
}

func newFakeWithdrawals() *fakeWithdrawals {
	return &fakeWithdrawals{byID: make(map[uint]*models.WithdrawalRequest), nextID: 1}
}

func (f *fakeWithdrawals) Create(w *models.WithdrawalRequest) error {
	w.ID = f.nextID
	f.nextID++
	f.byID[w.ID] = w
	return nil
}

func (f *fakeWithdrawals) GetByID(id uint) (*models.WithdrawalRequest, error) {
	w, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return w, nil
}

func (f *fakeWithdrawals) GetByIDForUpdate(_ *gorm.DB, id uint) (*models.WithdrawalRequest, error) {
	return f.GetByID(id)
}

func (f *fakeWithdrawals) Update(_ *gorm.DB, w *models.WithdrawalRequest) error {
	f.byID[w.ID] = w
	return nil
}

func (f *fakeWithdrawals) SumPendingByUser(userID uint) (int64, error) {
	var total int64
	for _, w := range f.byID {
		if w.UserID == userID && w.Status == domain.WithdrawalStatusPending {
			total += w.AmountKobo
		}
	}
	return total, nil
}

type fakeRefunds struct {
	rows   []*models.Refund
	nextID uint
}

func (f *fakeRefunds) Create(_ *gorm.DB, r *models.Refund) error {
	f.nextID++
	r.ID = f.nextID
	f.rows = append(f.rows, r)
	return nil
}

func (f *fakeRefunds) GetByID(id uint) (*models.Refund, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
