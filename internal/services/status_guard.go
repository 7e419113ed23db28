package services

import (
	"fmt"

	"ordersvc/internal/models"
)

// validTransitions enumerates the legal status edges. "delivered" is
// terminal; "cancelled" can be reactivated back to "pending".
var validTransitions = map[string][]string{
	models.StatusPending:    {models.StatusProcessing, models.StatusCancelled},
	models.StatusProcessing: {models.StatusShipped, models.StatusCancelled},
	models.StatusShipped:    {models.StatusDelivered, models.StatusCancelled},
	models.StatusDelivered:  {},
	models.StatusCancelled:  {models.StatusPending},
}

// ValidateStatusTransition reports whether an order may move from oldStatus
// to newStatus. A transition to the same status is always a legal no-op.
// Statuses outside the known set are rejected naming the offending side.
func ValidateStatusTransition(oldStatus, newStatus string) error {
	allowed, ok := validTransitions[oldStatus]
	if !ok {
		return fmt.Errorf("unknown current status: %s", oldStatus)
	}
	if _, ok := validTransitions[newStatus]; !ok {
		return fmt.Errorf("unknown target status: %s", newStatus)
	}

	if oldStatus == newStatus {
		return nil
	}

	for _, next := range allowed {
		if next == newStatus {
			return nil
		}
	}
	return fmt.Errorf("invalid status transition: %s -> %s", oldStatus, newStatus)
}
