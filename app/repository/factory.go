package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Repositories bundles every repository implementation.
type Repositories struct {
	Order      OrderRepository
	Store      StoreRepository
	Template   TemplateRepository
	WebhookLog WebhookLogRepository
}

// NewRepositories creates all repositories against one DB handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Order:      NewOrderRepository(db),
		Store:      NewStoreRepository(db),
		Template:   NewTemplateRepository(db),
		WebhookLog: NewWebhookLogRepository(db),
	}
}

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetOrderRepository returns the order repository instance
func (f *Factory) GetOrderRepository() OrderRepository {
	return f.GetRepositories().Order
}

// GetStoreRepository returns the store repository instance
func (f *Factory) GetStoreRepository() StoreRepository {
	return f.GetRepositories().Store
}

// GetTemplateRepository returns the template repository instance
func (f *Factory) GetTemplateRepository() TemplateRepository {
	return f.GetRepositories().Template
}

// GetWebhookLogRepository returns the webhook ledger repository instance
func (f *Factory) GetWebhookLogRepository() WebhookLogRepository {
	return f.GetRepositories().WebhookLog
}

// Global factory instance
var globalFactory *Factory
var factoryOnce sync.Once

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryOnce.Do(func() {
		globalFactory = NewFactory(db)
	})
}

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	if globalFactory == nil {
		panic("Repository factory not initialized. Call InitializeFactory first.")
	}
	return globalFactory
}

// GetGlobalRepositories returns the global repositories instance
func GetGlobalRepositories() *Repositories {
	return GetGlobalFactory().GetRepositories()
}
