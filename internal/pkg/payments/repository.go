package payments

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bodhiverse/bodhika/app/models"
)

// Repository provides DB operations used by the payments service.
type Repository interface {
	CreateOrder(order *models.PaymentOrder) error
	GetOrderByProviderOrderID(provider, providerOrderID string) (*models.PaymentOrder, error)
	MarkOrderPaid(id uint, paymentID string) error
	MarkOrderFailed(id uint) error

	CreatePaymentEventIfNotExists(event *models.PaymentEvent) (bool, *models.PaymentEvent, error)
	MarkEventProcessed(id uint, processingError string) error

	ListSubscriptionsByUser(userID uint) ([]models.Subscription, error)
	LatestActiveSubscriptionByType(userID uint, planType string) (*models.Subscription, error)
	CreateSubscription(sub *models.Subscription) error
	SaveSubscription(sub *models.Subscription) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payments repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateOrder(order *models.PaymentOrder) error {
	return r.db.Create(order).Error
}

func (r *gormRepository) GetOrderByProviderOrderID(provider, providerOrderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := r.db.Where("provider = ? AND provider_order_id = ?", provider, providerOrderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormRepository) MarkOrderPaid(id uint, paymentID string) error {
	return r.db.Model(&models.PaymentOrder{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     models.OrderStatusPaid,
		"payment_id": paymentID,
	}).Error
}

func (r *gormRepository) MarkOrderFailed(id uint) error {
	return r.db.Model(&models.PaymentOrder{}).Where("id = ?", id).
		Update("status", models.OrderStatusFailed).Error
}

func (r *gormRepository) CreatePaymentEventIfNotExists(event *models.PaymentEvent) (bool, *models.PaymentEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkEventProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *gormRepository) ListSubscriptionsByUser(userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("user_id = ?", userID).Find(&subs).Error
	return subs, err
}

func (r *gormRepository) LatestActiveSubscriptionByType(userID uint, planType string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("user_id = ? AND type = ? AND is_active = ?", userID, planType, true).
		Order("start_date DESC").First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) CreateSubscription(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *gormRepository) SaveSubscription(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}
