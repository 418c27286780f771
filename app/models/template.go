package models

import (
	"encoding/json"
	"time"
)

// SampleProduct is one entry of a template's seed catalog.
type SampleProduct struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// Template is read-only reference data. Its theme and sample products are
// copied into a new store at creation time and never re-derived later.
type Template struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Key                string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"key"`
	Title              string    `gorm:"type:varchar(100);not null" json:"title"`
	Description        string    `gorm:"type:varchar(500);default:null" json:"description,omitempty"`
	ThumbnailURL       string    `gorm:"type:varchar(255);default:null" json:"thumbnail_url,omitempty"`
	ThemeJSON          string    `gorm:"type:json" json:"theme_json"`
	SampleProductsJSON string    `gorm:"type:json" json:"sample_products_json"`
	IsActive           bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// SampleProducts decodes the seed catalog. An empty or missing list is not an
// error; stores can start without products.
func (t *Template) SampleProducts() ([]SampleProduct, error) {
	if t.SampleProductsJSON == "" {
		return nil, nil
	}
	var products []SampleProduct
	if err := json.Unmarshal([]byte(t.SampleProductsJSON), &products); err != nil {
		return nil, err
	}
	return products, nil
}
