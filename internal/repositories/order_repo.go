package repositories

import (
	"errors"

	"ordersvc/internal/models"
)

// ErrOrderNotFound is returned when an order id does not exist. Implementations
// wrap it so callers can match with errors.Is while keeping the id in the
// message.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	Update(order *models.Order) error
	// DeleteWithEvents removes an order and its timeline events in one
	// transaction, events first (events reference the order by id).
	DeleteWithEvents(id string) error
}

// OrderEventRepository defines the interface for the append-only order
// timeline. Events are never updated; deletion happens only through
// OrderRepository.DeleteWithEvents.
type OrderEventRepository interface {
	Append(event *models.OrderEvent) error
	// ListByOrderID returns events for one order in non-decreasing
	// creation-timestamp order.
	ListByOrderID(orderID string) ([]models.OrderEvent, error)
}
