package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds every remote call made by the clients in this package.
const DefaultTimeout = 5 * time.Second

// InventoryItem is the Inventory service's representation of one stock record.
type InventoryItem struct {
	ID  int    `json:"id"`
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

// InventoryClient talks to the remote Inventory service. Reserve and Release
// are each a read-modify-write over two sequential HTTP calls; there is no
// atomic decrement at this boundary, so two concurrent reservations can both
// observe sufficient stock. The Inventory service owns that race.
type InventoryClient struct {
	baseURL string
	client  *http.Client
}

// NewInventoryClient creates a new InventoryClient. A zero timeout falls back
// to DefaultTimeout.
func NewInventoryClient(baseURL string, timeout time.Duration) *InventoryClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &InventoryClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetBySKU finds an inventory record by its SKU. Returns ErrSKUNotFound when
// the SKU does not exist and ErrUnavailable when the service cannot be
// reached; the two are never conflated.
func (c *InventoryClient) GetBySKU(ctx context.Context, sku, token string) (*InventoryItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build inventory request: %w", err)
	}
	setAuthHeader(req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventory service: %w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inventory service: %w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var items []InventoryItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("inventory service: %w: invalid response: %v", ErrUnavailable, err)
	}

	for i := range items {
		if items[i].SKU == sku {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("SKU '%s': %w", sku, ErrSKUNotFound)
}

// CheckStock reports whether at least requiredQty units of sku are on hand,
// along with the current quantity.
func (c *InventoryClient) CheckStock(ctx context.Context, sku string, requiredQty int, token string) (bool, int, error) {
	item, err := c.GetBySKU(ctx, sku, token)
	if err != nil {
		return false, 0, err
	}
	return item.Qty >= requiredQty, item.Qty, nil
}

// Reserve decrements stock for sku by qty. The new quantity is computed
// locally from the read; the write is rejected locally if it would go
// negative.
func (c *InventoryClient) Reserve(ctx context.Context, sku string, qty int, token string) error {
	item, err := c.GetBySKU(ctx, sku, token)
	if err != nil {
		return err
	}

	newQty := item.Qty - qty
	if newQty < 0 {
		return fmt.Errorf("%w for SKU '%s': available %d, requested %d", ErrInsufficientStock, sku, item.Qty, qty)
	}

	if err := c.setQuantity(ctx, item.ID, newQty, token); err != nil {
		return fmt.Errorf("failed to reserve %d of SKU '%s': %w", qty, sku, err)
	}
	return nil
}

// Release increments stock for sku by qty. Used as the compensating action
// for Reserve and when an order is cancelled. It is deliberately not bounded
// by any original stock level.
func (c *InventoryClient) Release(ctx context.Context, sku string, qty int, token string) error {
	item, err := c.GetBySKU(ctx, sku, token)
	if err != nil {
		return err
	}

	if err := c.setQuantity(ctx, item.ID, item.Qty+qty, token); err != nil {
		return fmt.Errorf("failed to release %d of SKU '%s': %w", qty, sku, err)
	}
	return nil
}

// setQuantity writes an absolute quantity for one inventory record.
func (c *InventoryClient) setQuantity(ctx context.Context, itemID, qty int, token string) error {
	body, err := json.Marshal(map[string]int{"qty": qty})
	if err != nil {
		return fmt.Errorf("failed to marshal quantity update: %w", err)
	}

	url := fmt.Sprintf("%s/%d", c.baseURL, itemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build inventory update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setAuthHeader(req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("inventory service: %w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inventory service: %w: update returned status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func setAuthHeader(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
