package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a seed catalog row copied from the template's sample product list
// when the store is created. SortOrder preserves template order.
type Product struct {
	ID            string    `gorm:"type:char(36);primaryKey" json:"id"`
	StoreID       string    `gorm:"type:char(36);not null;index" json:"store_id"`
	Name          string    `gorm:"type:varchar(200);not null" json:"name"`
	Description   string    `gorm:"type:varchar(1000);default:null" json:"description,omitempty"`
	Price         float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	ComparePrice  *float64  `gorm:"type:decimal(10,2);default:null" json:"compare_price,omitempty"`
	ImagesJSON    string    `gorm:"type:json" json:"images_json"`
	Category      string    `gorm:"type:varchar(100);default:null" json:"category,omitempty"`
	StockQuantity int       `gorm:"default:0" json:"stock_quantity"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	SortOrder     int       `gorm:"default:0;index" json:"sort_order"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
