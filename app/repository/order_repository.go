package repository

import (
	"github.com/bodhiverse/bodhika/app/models"
	"gorm.io/gorm"
)

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new payment order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create creates a new payment order in the database
func (r *orderRepository) Create(order *models.PaymentOrder) error {
	return r.db.Create(order).Error
}

// GetByProviderOrderID retrieves an order by its provider-side identifier
func (r *orderRepository) GetByProviderOrderID(provider, providerOrderID string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := r.db.Where("provider = ? AND provider_order_id = ?", provider, providerOrderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByUserID retrieves orders for a user with pagination, newest first
func (r *orderRepository) GetByUserID(userID uint, offset, limit int) ([]models.PaymentOrder, error) {
	var orders []models.PaymentOrder
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&orders).Error
	return orders, err
}

// Update updates an existing payment order in the database
func (r *orderRepository) Update(order *models.PaymentOrder) error {
	return r.db.Save(order).Error
}

// Count returns the total number of payment orders
func (r *orderRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentOrder{}).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of orders in the given status
func (r *orderRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentOrder{}).Where("status = ?", status).
		Count(&count).Error
	return count, err
}
