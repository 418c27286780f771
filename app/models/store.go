package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is a live storefront. It is created exactly once per fulfilled order
// and keeps an independent lifetime afterwards: refunding the order does not
// delete the store.
type Store struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"id"`
	Slug        string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description string    `gorm:"type:varchar(500);default:null" json:"description,omitempty"`
	Whatsapp    string    `gorm:"type:varchar(20);not null" json:"whatsapp"`
	Email       string    `gorm:"type:varchar(200);default:null" json:"email,omitempty"`
	LogoURL     string    `gorm:"type:varchar(255);default:null" json:"logo_url,omitempty"`
	BannerURL   string    `gorm:"type:varchar(255);default:null" json:"banner_url,omitempty"`
	ThemeJSON   string    `gorm:"type:json" json:"theme_json"`
	TemplateKey string    `gorm:"type:varchar(50);default:null" json:"template_key,omitempty"`
	IsPremium   bool      `gorm:"default:false" json:"is_premium"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Products []Product `gorm:"foreignKey:StoreID" json:"products,omitempty"`
}

func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
