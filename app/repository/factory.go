package repository

import (
	"sync"

	"gorm.io/gorm"
)

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

// NewFactoryWithRepositories builds a factory around pre-built repositories.
// Tests use this to install stub implementations.
func NewFactoryWithRepositories(repos *Repositories) *Factory {
	f := &Factory{repos: repos}
	f.once.Do(func() {})
	return f
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

// GetSubscriptionRepository returns the subscription repository instance
func (f *Factory) GetSubscriptionRepository() SubscriptionRepository {
	return f.GetRepositories().Subscription
}

// GetWebinarRepository returns the webinar repository instance
func (f *Factory) GetWebinarRepository() WebinarRepository {
	return f.GetRepositories().Webinar
}

// GetEBookRepository returns the ebook repository instance
func (f *Factory) GetEBookRepository() EBookRepository {
	return f.GetRepositories().EBook
}

// GetVideoRepository returns the video repository instance
func (f *Factory) GetVideoRepository() VideoRepository {
	return f.GetRepositories().Video
}

// GetOrderRepository returns the payment order repository instance
func (f *Factory) GetOrderRepository() OrderRepository {
	return f.GetRepositories().Order
}

// Global factory instance
var globalFactory *Factory
var factoryMu sync.Mutex

// InitializeFactory initializes the global repository factory
func InitializeFactory(db *gorm.DB) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if globalFactory == nil {
		globalFactory = NewFactory(db)
	}
}

// SetGlobalFactory replaces the global factory. Tests use this to swap in a
// factory bound to an in-memory database.
func SetGlobalFactory(f *Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	globalFactory = f
}

// GetGlobalFactory returns the global repository factory instance
func GetGlobalFactory() *Factory {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if globalFactory == nil {
		panic("Repository factory not initialized. Call InitializeFactory first.")
	}
	return globalFactory
}

// GetGlobalRepositories returns the global repositories instance
func GetGlobalRepositories() *Repositories {
	return GetGlobalFactory().GetRepositories()
}
