package repositories

import (
	"fmt"
	"sync"
	"time"

	"ordersvc/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	events *MockOrderEventRepository
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository. The
// event repository is shared so DeleteWithEvents can cascade.
func NewMockOrderRepository(events *MockOrderEventRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
		events: events,
	}
}

// GetAll returns all orders.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	return orderList, nil
}

// GetByUserID returns all orders owned by one user.
func (r *MockOrderRepository) GetByUserID(userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orderList []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orderList = append(orderList, order)
		}
	}
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
	}
	return &order, nil
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; ok {
		return fmt.Errorf("order with ID %s already exists", order.ID)
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// Update replaces the mutable fields of an existing order.
func (r *MockOrderRepository) Update(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.orders[order.ID]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", order.ID, ErrOrderNotFound)
	}
	order.CreatedAt = existing.CreatedAt
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// DeleteWithEvents removes the order and its timeline events.
func (r *MockOrderRepository) DeleteWithEvents(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
	}
	if r.events != nil {
		r.events.deleteByOrderID(id)
	}
	delete(r.orders, id)
	return nil
}

// MockOrderEventRepository is an in-memory implementation of OrderEventRepository.
type MockOrderEventRepository struct {
	events []models.OrderEvent
	nextID uint
	mu     sync.RWMutex
}

// NewMockOrderEventRepository creates a new instance of MockOrderEventRepository.
func NewMockOrderEventRepository() *MockOrderEventRepository {
	return &MockOrderEventRepository{
		nextID: 1,
	}
}

// Append records a new timeline event.
func (r *MockOrderEventRepository) Append(event *models.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.ID = r.nextID
	r.nextID++
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.events = append(r.events, *event)
	return nil
}

// ListByOrderID returns events for one order, oldest first. Append order is
// insertion order, which is non-decreasing in creation time.
func (r *MockOrderEventRepository) ListByOrderID(orderID string) ([]models.OrderEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []models.OrderEvent
	for _, e := range r.events {
		if e.OrderID == orderID {
			list = append(list, e)
		}
	}
	return list, nil
}

func (r *MockOrderEventRepository) deleteByOrderID(orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.events[:0]
	for _, e := range r.events {
		if e.OrderID != orderID {
			kept = append(kept, e)
		}
	}
	r.events = kept
}
