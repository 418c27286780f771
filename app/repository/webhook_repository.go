package repository

import (
	"github.com/amirulizwan/KedaiKit/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type webhookLogRepository struct {
	db *gorm.DB
}

// NewWebhookLogRepository creates a ledger repository backed by GORM.
func NewWebhookLogRepository(db *gorm.DB) WebhookLogRepository {
	return &webhookLogRepository{db: db}
}

func (r *webhookLogRepository) FindByProviderEvent(provider, providerEventID string) (*models.WebhookLog, error) {
	var entry models.WebhookLog
	err := r.db.Where("provider = ? AND provider_event_id = ?", provider, providerEventID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *webhookLogRepository) CreateIfNotExists(entry *models.WebhookLog) (bool, *models.WebhookLog, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(entry)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookLog
	if err := r.db.Where("provider = ? AND provider_event_id = ?", entry.Provider, entry.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *webhookLogRepository) MarkProcessed(id uint, errorMessage string) error {
	updates := map[string]interface{}{
		"processed":     true,
		"error_message": errorMessage,
	}
	return r.db.Model(&models.WebhookLog{}).Where("id = ?", id).Updates(updates).Error
}
