package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem represents a single line item within an order. Items are embedded
// in the order row as JSON; the SKU references an inventory record in the
// Inventory service by business key, not by foreign key.
type OrderItem struct {
	SKU      string          `json:"sku" validate:"required"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"` // Price per unit at the time of order
}

// Order represents a customer order. The ID is caller-supplied and must be
// unique; orders are created and mutated only through the OrderService.
type Order struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(64)" validate:"required,max=64"`
	UserID    string          `json:"user_id" gorm:"index;type:varchar(36)" validate:"required"`
	Total     decimal.Decimal `json:"total" gorm:"type:numeric(10,2)"`
	Status    string          `json:"status" gorm:"type:varchar(20)"`
	Items     []OrderItem     `json:"items" gorm:"serializer:json"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderEvent is an append-only audit row describing one state-affecting
// operation on an order. Events are never updated; they are deleted only as
// part of deleting their parent order.
type OrderEvent struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID     string    `json:"order_id" gorm:"index;type:varchar(64)"`
	EventType   string    `json:"event_type" gorm:"type:varchar(32)"`
	Description string    `json:"description" gorm:"type:text"`
	OldValue    string    `json:"old_value,omitempty"`
	NewValue    string    `json:"new_value,omitempty"`
	UserID      string    `json:"user_id,omitempty" gorm:"type:varchar(36)"`
	CreatedAt   time.Time `json:"created_at"`
}

// Timeline event types.
const (
	EventTypeCreated       = "created"
	EventTypeStatusChanged = "status_changed"
	EventTypeUpdated       = "updated"
)
