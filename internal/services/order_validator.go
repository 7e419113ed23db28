package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ordersvc/internal/models"
)

// Business-rule bounds for order items.
const (
	maxOrderItems  = 100
	maxItemQty     = 10000
	maxItemPrice   = 1000000
	totalTolerance = "0.01"
)

// ValidateOrderItems checks order items against the business rules: a
// non-empty list of at most 100 items, unique SKUs, quantities in (0, 10000]
// and prices in [0, 1000000]. Pure, no I/O.
func ValidateOrderItems(items []models.OrderItem) error {
	if len(items) == 0 {
		return fmt.Errorf("order must contain at least one item")
	}
	if len(items) > maxOrderItems {
		return fmt.Errorf("order cannot contain more than %d items", maxOrderItems)
	}

	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if seen[item.SKU] {
			return fmt.Errorf("order contains duplicate SKUs")
		}
		seen[item.SKU] = true

		if item.Quantity <= 0 {
			return fmt.Errorf("item %s: quantity must be positive", item.SKU)
		}
		if item.Quantity > maxItemQty {
			return fmt.Errorf("item %s: quantity exceeds maximum (%d)", item.SKU, maxItemQty)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("item %s: price cannot be negative", item.SKU)
		}
		if item.Price.GreaterThan(decimal.NewFromInt(maxItemPrice)) {
			return fmt.Errorf("item %s: price exceeds maximum (%d)", item.SKU, maxItemPrice)
		}
	}
	return nil
}

// ValidateOrderTotal recomputes the sum of quantity*price over the items and
// compares it to the client-supplied total, allowing rounding differences up
// to 0.01. Defends against totals disagreeing with line items; invoked before
// the order is ever persisted.
func ValidateOrderTotal(items []models.OrderItem, claimedTotal decimal.Decimal) error {
	calculated := decimal.Zero
	for _, item := range items {
		calculated = calculated.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	tolerance := decimal.RequireFromString(totalTolerance)
	if calculated.Sub(claimedTotal).Abs().GreaterThan(tolerance) {
		return fmt.Errorf("order total mismatch: calculated %s, claimed %s", calculated.StringFixed(2), claimedTotal.StringFixed(2))
	}
	return nil
}
