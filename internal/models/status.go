package models

// Order lifecycle statuses. "delivered" is terminal; "cancelled" can be
// reactivated back to "pending".
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

var orderStatuses = map[string]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
}

// IsValidStatus reports whether s is one of the known order statuses.
func IsValidStatus(s string) bool {
	return orderStatuses[s]
}
