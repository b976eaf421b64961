package repository

import (
	"encoding/json"
	"log"

	"campuspay/internal/models"

	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(entry *models.AuditLog) error {
	return r.db.Create(entry).Error
}

// Record writes an audit row best-effort. Audit failures are logged but never
// fail the operation being audited.
func (r *AuditRepository) Record(userID *uint, action, resource, resourceID, ip string, metadata interface{}) {
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IP:         ip,
	}
	if metadata != nil {
		if b, err := json.Marshal(metadata); err == nil {
			entry.Metadata = string(b)
		}
	}
	if err := r.db.Create(entry).Error; err != nil {
		log.Printf("[Audit] failed to record %s on %s/%s: %v", action, resource, resourceID, err)
	}
}

func (r *AuditRepository) List(limit, offset int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error
	return logs, err
}

func (r *AuditRepository) ListByUser(userID uint, limit, offset int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&logs).Error
	return logs, err
}
