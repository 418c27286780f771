package repository

import (
	"github.com/amirulizwan/KedaiKit/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a store repository backed by GORM.
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) CreateIfAbsent(store *models.Store) (bool, *models.Store, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(store)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.Store
	if err := r.db.Where("slug = ?", store.Slug).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *storeRepository) GetBySlug(slug string) (*models.Store, error) {
	var store models.Store
	if err := r.db.Where("slug = ?", slug).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) GetActiveBySlugWithProducts(slug string) (*models.Store, error) {
	var store models.Store
	err := r.db.
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("sort_order ASC")
		}).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) CreateProducts(products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.Create(&products).Error
}

func (r *storeRepository) CountProducts(storeID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Where("store_id = ?", storeID).Count(&count).Error
	return count, err
}
