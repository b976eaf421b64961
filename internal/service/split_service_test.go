package service

import (
	"testing"

	"campuspay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestComputeSplit(t *testing.T) {
	tests := []struct {
		name          string
		gross         int64
		commission    int
		lecturerShare int
		wantPartner   int64
		wantLecturer  int64
		wantPlatform  int64
	}{
		{"referred lecturer", 1000, 15, 50, 150, 425, 425},
		{"no partner", 1000, 0, 50, 0, 500, 500},
		{"full commission", 1000, 100, 50, 1000, 0, 0},
		{"lecturer takes all of net", 1000, 15, 100, 150, 850, 0},
		{"rounding lands on platform", 101, 15, 50, 15, 43, 43},
		{"one kobo", 1, 15, 50, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeSplit(tt.gross, tt.commission, tt.lecturerShare)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPartner, got.PartnerKobo)
			assert.Equal(t, tt.wantLecturer, got.LecturerKobo)
			assert.Equal(t, tt.wantPlatform, got.PlatformKobo)
			assert.Equal(t, tt.gross, got.LecturerKobo+got.PartnerKobo+got.PlatformKobo,
				"split must conserve the gross amount")
		})
	}
}

func TestComputeSplitRejectsBadInput(t *testing.T) {
	_, err := ComputeSplit(0, 15, 50)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ComputeSplit(-100, 15, 50)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ComputeSplit(1000, 101, 50)
	assert.Error(t, err)
	_, err = ComputeSplit(1000, 15, -1)
	assert.Error(t, err)
}

type stubPartners struct {
	partner  *models.Partner
	referral *models.Referral
	err      error
}

func (s stubPartners) GetActiveByLecturerID(uint) (*models.Partner, *models.Referral, error) {
	return s.partner, s.referral, s.err
}

type stubSettings struct{ share int }

func (s stubSettings) GetInt(key string, def int) int {
	if s.share != 0 {
		return s.share
	}
	return def
}

func TestSplitServiceResolve(t *testing.T) {
	t.Run("referred lecturer gets partner slice", func(t *testing.T) {
		svc := NewSplitService(stubPartners{
			partner:  &models.Partner{ID: 7, UserID: 70, CommissionRate: 15},
			referral: &models.Referral{ID: 3},
		}, stubSettings{})
		split, err := svc.Resolve(42, 1000)
		require.NoError(t, err)
		assert.Equal(t, int64(150), split.PartnerKobo)
		assert.Equal(t, int64(425), split.LecturerKobo)
		assert.Equal(t, uint(7), split.PartnerID)
		assert.Equal(t, uint(70), split.PartnerUserID)
		assert.Equal(t, uint(3), split.ReferralID)
	})

	t.Run("unreferred lecturer pays no commission", func(t *testing.T) {
		svc := NewSplitService(stubPartners{err: gorm.ErrRecordNotFound}, stubSettings{})
		split, err := svc.Resolve(42, 1000)
		require.NoError(t, err)
		assert.Zero(t, split.PartnerKobo)
		assert.Equal(t, int64(500), split.LecturerKobo)
		assert.Equal(t, int64(500), split.PlatformKobo)
	})

	t.Run("partner lookup failure fails open", func(t *testing.T) {
		svc := NewSplitService(stubPartners{err: assert.AnError}, stubSettings{})
		split, err := svc.Resolve(42, 1000)
		require.NoError(t, err, "a broken partner lookup must not block the payment")
		assert.Zero(t, split.PartnerKobo)
		assert.Zero(t, split.PartnerID)
	})

	t.Run("configured lecturer share is honored", func(t *testing.T) {
		svc := NewSplitService(stubPartners{err: gorm.ErrRecordNotFound}, stubSettings{share: 70})
		split, err := svc.Resolve(42, 1000)
		require.NoError(t, err)
		assert.Equal(t, int64(700), split.LecturerKobo)
		assert.Equal(t, int64(300), split.PlatformKobo)
	})
}
