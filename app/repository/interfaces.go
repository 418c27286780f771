package repository

import (
	"github.com/amirulizwan/KedaiKit/app/models"
)

// OrderRepository defines the interface for order-related database operations
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetByNumber(orderNumber string) (*models.Order, error)
	UpdateFields(id string, fields map[string]interface{}) error
	// TransitionStatus performs a compare-and-swap style status update: the
	// write only happens when the stored status is one of from. Returns false
	// when a concurrent caller won the transition.
	TransitionStatus(id string, from []string, to string, extra map[string]interface{}) (bool, error)
	List(status string, limit, offset int) ([]models.Order, int64, error)
}

// StoreRepository defines the interface for store-related database operations
type StoreRepository interface {
	// CreateIfAbsent inserts the store unless its slug already exists; the
	// existing row wins and is returned. Retried fulfillments must tolerate
	// "store already exists for this slug" as a non-fatal outcome.
	CreateIfAbsent(store *models.Store) (bool, *models.Store, error)
	GetBySlug(slug string) (*models.Store, error)
	GetActiveBySlugWithProducts(slug string) (*models.Store, error)
	CreateProducts(products []models.Product) error
	CountProducts(storeID string) (int64, error)
}

// TemplateRepository defines the interface for template reference data
type TemplateRepository interface {
	GetByKey(key string) (*models.Template, error)
	ListActive() ([]models.Template, error)
}

// WebhookLogRepository defines the interface for the webhook idempotency ledger
type WebhookLogRepository interface {
	FindByProviderEvent(provider, providerEventID string) (*models.WebhookLog, error)
	// CreateIfNotExists inserts the ledger row unless the (provider, event id)
	// pair is already recorded. The boolean reports whether this caller
	// created the row; a duplicate insert is not an error.
	CreateIfNotExists(entry *models.WebhookLog) (bool, *models.WebhookLog, error)
	MarkProcessed(id uint, errorMessage string) error
}
