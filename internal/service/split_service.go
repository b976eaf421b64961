package service

import (
	"errors"
	"log"

	"campuspay/internal/domain"
	"campuspay/internal/models"
	"campuspay/internal/repository"

	"gorm.io/gorm"
)

// Split is the three-way division of one gross submission payment. All four
// amounts are kobo and always satisfy
// LecturerKobo + PartnerKobo + PlatformKobo == GrossKobo.
type Split struct {
	GrossKobo      int64 `json:"gross_kobo"`
	LecturerKobo   int64 `json:"lecturer_kobo"`
	PartnerKobo    int64 `json:"partner_kobo"`
	PlatformKobo   int64 `json:"platform_kobo"`
	PartnerID      uint  `json:"partner_id,omitempty"`
	PartnerUserID  uint  `json:"partner_user_id,omitempty"`
	ReferralID     uint  `json:"referral_id,omitempty"`
	CommissionRate int   `json:"commission_rate"`
	LecturerShare  int   `json:"lecturer_share"`
}

// ComputeSplit divides gross between partner, lecturer and platform using
// integer kobo math. Commission comes off the top, the lecturer takes their
// share of the remainder, and the platform keeps the rest, so any rounding
// loss lands on the platform and the total always reconciles.
func ComputeSplit(grossKobo int64, commissionRate, lecturerShare int) (Split, error) {
	if grossKobo <= 0 {
		return Split{}, ErrInvalidAmount
	}
	if commissionRate < 0 || commissionRate > 100 || lecturerShare < 0 || lecturerShare > 100 {
		return Split{}, errors.New("split percentages must be between 0 and 100")
	}
	partner := grossKobo * int64(commissionRate) / 100
	lecturer := (grossKobo - partner) * int64(lecturerShare) / 100
	platform := grossKobo - partner - lecturer
	return Split{
		GrossKobo:      grossKobo,
		LecturerKobo:   lecturer,
		PartnerKobo:    partner,
		PlatformKobo:   platform,
		CommissionRate: commissionRate,
		LecturerShare:  lecturerShare,
	}, nil
}

// partnerResolver is the slice of PartnerRepository the split service needs.
type partnerResolver interface {
	GetActiveByLecturerID(lecturerID uint) (*models.Partner, *models.Referral, error)
}

type splitSettings interface {
	GetInt(key string, def int) int
}

// SplitService resolves the split policy for a lecturer: the partner that
// referred them (if any, and active) and the configured percentages.
type SplitService struct {
	partners partnerResolver
	settings splitSettings
}

func NewSplitService(partners partnerResolver, settings splitSettings) *SplitService {
	return &SplitService{partners: partners, settings: settings}
}

// Resolve computes the split for a payment of grossKobo to the given
// lecturer. Partner lookup fails open: if the lookup errors for any reason
// other than "no referral", the payment proceeds without a commission rather
// than blocking the student.
func (s *SplitService) Resolve(lecturerID uint, grossKobo int64) (Split, error) {
	lecturerShare := domain.DefaultLecturerSharePercent
	commissionRate := 0
	var partnerID, partnerUserID, referralID uint

	if s.settings != nil {
		lecturerShare = s.settings.GetInt(domain.SettingLecturerSharePercent, domain.DefaultLecturerSharePercent)
	}

	if s.partners != nil {
		partner, referral, err := s.partners.GetActiveByLecturerID(lecturerID)
		switch {
		case err == nil:
			commissionRate = partner.CommissionRate
			partnerID = partner.ID
			partnerUserID = partner.UserID
			referralID = referral.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			// unreferred lecturer, no commission
		default:
			log.Printf("[Split] partner lookup failed for lecturer %d, proceeding without commission: %v", lecturerID, err)
		}
	}

	split, err := ComputeSplit(grossKobo, commissionRate, lecturerShare)
	if err != nil {
		return Split{}, err
	}
	split.PartnerID = partnerID
	split.PartnerUserID = partnerUserID
	split.ReferralID = referralID
	return split, nil
}

var _ partnerResolver = (*repository.PartnerRepository)(nil)
var _ splitSettings = (*repository.SettingRepository)(nil)
