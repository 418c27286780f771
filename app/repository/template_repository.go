package repository

import (
	"github.com/amirulizwan/KedaiKit/app/models"
	"gorm.io/gorm"
)

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a template repository backed by GORM.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) GetByKey(key string) (*models.Template, error) {
	var template models.Template
	if err := r.db.Where("`key` = ?", key).First(&template).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) ListActive() ([]models.Template, error) {
	var templates []models.Template
	err := r.db.Where("is_active = ?", true).Order("id ASC").Find(&templates).Error
	return templates, err
}
