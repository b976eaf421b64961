package repository

import (
	"campuspay/internal/domain"
	"campuspay/internal/models"

	"gorm.io/gorm"
)

type PartnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) Create(p *models.Partner) error {
	return r.db.Create(p).Error
}

func (r *PartnerRepository) GetByID(id uint) (*models.Partner, error) {
	var p models.Partner
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PartnerRepository) GetByUserID(userID uint) (*models.Partner, error) {
	var p models.Partner
	err := r.db.Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PartnerRepository) GetByCode(code string) (*models.Partner, error) {
	var p models.Partner
	err := r.db.Where("partner_code = ?", code).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetActiveByLecturerID resolves the active partner credited for a lecturer's
// revenue, via the referral that recruited the lecturer. gorm.ErrRecordNotFound
// means the lecturer is unreferred, which is the common case.
func (r *PartnerRepository) GetActiveByLecturerID(lecturerID uint) (*models.Partner, *models.Referral, error) {
	var ref models.Referral
	err := r.db.Where("referred_lecturer_id = ? AND status = ?", lecturerID, domain.PartnerStatusActive).
		First(&ref).Error
	if err != nil {
		return nil, nil, err
	}
	var p models.Partner
	err = r.db.Where("id = ? AND status = ?", ref.PartnerID, domain.PartnerStatusActive).First(&p).Error
	if err != nil {
		return nil, nil, err
	}
	return &p, &ref, nil
}

func (r *PartnerRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Partner{}).Where("id = ?", id).Update("status", status).Error
}

func (r *PartnerRepository) UpdateCommissionRate(id uint, rate int) error {
	return r.db.Model(&models.Partner{}).Where("id = ?", id).Update("commission_rate", rate).Error
}

func (r *PartnerRepository) List(limit, offset int) ([]models.Partner, int64, error) {
	var partners []models.Partner
	var total int64
	if err := r.db.Model(&models.Partner{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Preload("User").Order("created_at DESC").Limit(limit).Offset(offset).Find(&partners).Error
	return partners, total, err
}

func (r *PartnerRepository) CreateReferral(ref *models.Referral) error {
	return r.db.Create(ref).Error
}

func (r *PartnerRepository) ListReferrals(partnerID uint, limit, offset int) ([]models.Referral, error) {
	var refs []models.Referral
	err := r.db.Preload("ReferredLecturer").Where("partner_id = ?", partnerID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&refs).Error
	return refs, err
}

// IncrementReferralStats bumps the referral's rollup counters after a
// submission payment commits.
func (r *PartnerRepository) IncrementReferralStats(referralID uint, revenueKobo int64) error {
	return r.db.Model(&models.Referral{}).Where("id = ?", referralID).
		Updates(map[string]interface{}{
			"total_submissions":  gorm.Expr("total_submissions + 1"),
			"total_revenue_kobo": gorm.Expr("total_revenue_kobo + ?", revenueKobo),
		}).Error
}
