package service

import (
	"errors"
	"strings"

	"campuspay/internal/domain"
	"campuspay/internal/models"
	"campuspay/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPartnerExists   = errors.New("user is already a partner")
	ErrAlreadyReferred = errors.New("lecturer already has a referring partner")
	ErrPartnerNotFound = errors.New("partner not found")
)

// PartnerService manages partner onboarding and lecturer referrals.
type PartnerService struct {
	partners *repository.PartnerRepository
	users    *repository.UserRepository
}

func NewPartnerService(partners *repository.PartnerRepository, users *repository.UserRepository) *PartnerService {
	return &PartnerService{partners: partners, users: users}
}

// CreatePartner promotes a user into an active partner with a fresh referral
// code. Commission rate 0 means "use the platform default".
func (s *PartnerService) CreatePartner(userID uint, businessName string, commissionRate int) (*models.Partner, error) {
	if commissionRate < 0 || commissionRate > 100 {
		return nil, errors.New("commission rate must be between 0 and 100")
	}
	if commissionRate == 0 {
		commissionRate = domain.DefaultCommissionRatePercent
	}
	if _, err := s.partners.GetByUserID(userID); err == nil {
		return nil, ErrPartnerExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	p := &models.Partner{
		UserID:         userID,
		PartnerCode:    newPartnerCode(),
		BusinessName:   businessName,
		CommissionRate: commissionRate,
		Status:         domain.PartnerStatusActive,
	}
	if err := s.partners.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

// RegisterReferral links a lecturer to the partner owning the given code. A
// lecturer can only ever be referred once; later codes are rejected.
func (s *PartnerService) RegisterReferral(code string, lecturerID uint) (*models.Referral, error) {
	p, err := s.partners.GetByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	if p.Status != domain.PartnerStatusActive {
		return nil, ErrPartnerNotFound
	}
	if _, _, err := s.partners.GetActiveByLecturerID(lecturerID); err == nil {
		return nil, ErrAlreadyReferred
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	ref := &models.Referral{
		PartnerID:          p.ID,
		ReferredLecturerID: lecturerID,
		ReferralCode:       p.PartnerCode,
		Status:             domain.PartnerStatusActive,
	}
	if err := s.partners.CreateReferral(ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// Suspend stops a partner from earning commission on future payments.
// Historical earnings are untouched.
func (s *PartnerService) Suspend(partnerID uint) error {
	return s.partners.UpdateStatus(partnerID, domain.PartnerStatusSuspended)
}

func (s *PartnerService) Activate(partnerID uint) error {
	return s.partners.UpdateStatus(partnerID, domain.PartnerStatusActive)
}

func (s *PartnerService) SetCommissionRate(partnerID uint, rate int) error {
	if rate < 0 || rate > 100 {
		return errors.New("commission rate must be between 0 and 100")
	}
	return s.partners.UpdateCommissionRate(partnerID, rate)
}

func newPartnerCode() string {
	return "CP-" + strings.ToUpper(uuid.NewString()[:8])
}
