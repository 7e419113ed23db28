package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ordersvc/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders from the database.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByUserID retrieves all orders owned by one user.
func (r *GORMOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Find(&orders, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID from the database.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create creates a new order in the database.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// Update persists changes to an existing order.
func (r *GORMOrderRepository) Update(order *models.Order) error {
	result := r.db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"user_id": order.UserID,
		"total":   order.Total,
		"status":  order.Status,
		"items":   order.Items,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update order %s: %w", order.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s: %w", order.ID, ErrOrderNotFound)
	}
	return nil
}

// DeleteWithEvents removes the order's timeline events and then the order row
// inside one transaction.
func (r *GORMOrderRepository) DeleteWithEvents(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.OrderEvent{}, "order_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete events for order %s: %w", id, err)
		}
		result := tx.Delete(&models.Order{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete order %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
		}
		return nil
	})
	return err
}

// GORMOrderEventRepository is a GORM implementation of OrderEventRepository.
type GORMOrderEventRepository struct {
	db *gorm.DB
}

// NewGORMOrderEventRepository creates a new instance of GORMOrderEventRepository.
func NewGORMOrderEventRepository(db *gorm.DB) *GORMOrderEventRepository {
	return &GORMOrderEventRepository{
		db: db,
	}
}

// Append inserts a new timeline event.
func (r *GORMOrderEventRepository) Append(event *models.OrderEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to append order event: %w", err)
	}
	return nil
}

// ListByOrderID returns all events for one order, oldest first.
func (r *GORMOrderEventRepository) ListByOrderID(orderID string) ([]models.OrderEvent, error) {
	var events []models.OrderEvent
	if err := r.db.Order("created_at asc, id asc").Find(&events, "order_id = ?", orderID).Error; err != nil {
		return nil, fmt.Errorf("failed to list events for order %s: %w", orderID, err)
	}
	return events, nil
}
