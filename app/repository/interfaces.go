package repository

import (
	"time"

	"github.com/bodhiverse/bodhika/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, *models.UserSettings, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
}

// SubscriptionRepository defines the interface for subscription operations
type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	GetByID(id uint) (*models.Subscription, error)
	GetByUserID(userID uint) ([]models.Subscription, error)
	GetActiveByUserID(userID uint) ([]models.Subscription, error)
	Update(sub *models.Subscription) error
	Deactivate(id uint) error
	DeactivateExpired(now time.Time) (int64, error)
	CountActiveByType(planType string) (int64, error)
}

// WebinarRepository defines the interface for webinar operations
type WebinarRepository interface {
	Create(webinar *models.Webinar) error
	GetByID(id uint) (*models.Webinar, error)
	GetAll(offset, limit int) ([]models.Webinar, error)
	GetUpcoming(after time.Time, limit int) ([]models.Webinar, error)
	Update(webinar *models.Webinar) error
	Delete(id uint) error
	Count() (int64, error)
}

// EBookRepository defines the interface for ebook operations
type EBookRepository interface {
	Create(ebook *models.EBook) error
	GetByID(id uint) (*models.EBook, error)
	GetActive(offset, limit int) ([]models.EBook, error)
	GetAll(offset, limit int) ([]models.EBook, error)
	Update(ebook *models.EBook) error
	Delete(id uint) error
	Count() (int64, error)
	AddDownloads(id uint, n int64) error
}

// VideoRepository defines the interface for video operations
type VideoRepository interface {
	Create(video *models.Video) error
	GetByID(id uint) (*models.Video, error)
	GetByType(videoType string, offset, limit int) ([]models.Video, error)
	GetAll(offset, limit int) ([]models.Video, error)
	Update(video *models.Video) error
	Delete(id uint) error
	Count() (int64, error)
	AddViews(id uint, n int64) error
}

// OrderRepository defines the interface for payment order operations
type OrderRepository interface {
	Create(order *models.PaymentOrder) error
	GetByProviderOrderID(provider, providerOrderID string) (*models.PaymentOrder, error)
	GetByUserID(userID uint, offset, limit int) ([]models.PaymentOrder, error)
	Update(order *models.PaymentOrder) error
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Subscription SubscriptionRepository
	Webinar      WebinarRepository
	EBook        EBookRepository
	Video        VideoRepository
	Order        OrderRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Webinar:      NewWebinarRepository(db),
		EBook:        NewEBookRepository(db),
		Video:        NewVideoRepository(db),
		Order:        NewOrderRepository(db),
	}
}
