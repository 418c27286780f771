package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order lifecycle states. Transitions are guarded by the order service and
// performed as conditional updates so concurrent callers cannot skip states.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusDeploying = "deploying"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
	OrderStatusRefunded  = "refunded"
)

const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Order is the root aggregate of the payment flow. The store slug is reserved
// here at creation time, before any payment happens, so the payment return URL
// stays stable even though the Store row is only created during fulfillment.
type Order struct {
	ID             string     `gorm:"type:char(36);primaryKey" json:"id"`
	OrderNumber    string     `gorm:"type:varchar(30);uniqueIndex;not null" json:"order_number"`
	StoreSlug      string     `gorm:"type:varchar(120);uniqueIndex;not null" json:"store_slug"`
	StoreName      string     `gorm:"type:varchar(100);not null" json:"store_name" validate:"required,min=2,max=100"`
	FullName       string     `gorm:"type:varchar(100);not null" json:"full_name" validate:"required,min=2,max=100"`
	Email          string     `gorm:"type:varchar(200);not null;index" json:"email" validate:"required,email"`
	Whatsapp       string     `gorm:"type:varchar(20);not null" json:"whatsapp" validate:"required,min=10,max=15"`
	TemplateKey    string     `gorm:"type:varchar(50);not null" json:"template_key" validate:"required"`
	PlanType       string     `gorm:"type:varchar(20);not null;default:'free'" json:"plan_type" validate:"oneof=free pro enterprise"`
	Amount         float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status         string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ToyyibBillCode string     `gorm:"type:varchar(50);default:null;index" json:"toyyib_bill_code,omitempty"`
	ToyyibRef      string     `gorm:"type:varchar(100);default:null" json:"toyyib_ref,omitempty"`
	PaymentURL     string     `gorm:"type:varchar(255);default:null" json:"payment_url,omitempty"`
	PaidAt         *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	DeployedAt     *time.Time `gorm:"type:timestamp;default:null" json:"deployed_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

func (o *Order) Validate() error {
	v := validator.New()
	return v.Struct(o)
}

// IsFinal reports whether no further automatic progress is possible.
func (o *Order) IsFinal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusRefunded
}

// IsValidPlan reports whether planType is one of the sellable plans.
func IsValidPlan(planType string) bool {
	switch planType {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	default:
		return false
	}
}
