package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ordersvc/internal/cache"
	"ordersvc/internal/clients"
	"ordersvc/internal/metrics"
	"ordersvc/internal/models"
	"ordersvc/internal/repositories"
)

// UserDirectory is the remote Users service contract consumed by the saga.
type UserDirectory interface {
	Exists(ctx context.Context, userID, token string) (bool, error)
}

// InventoryLedger is the remote Inventory service contract consumed by the
// saga. Reserve decrements stock, Release is its compensating inverse.
type InventoryLedger interface {
	CheckStock(ctx context.Context, sku string, requiredQty int, token string) (bool, int, error)
	Reserve(ctx context.Context, sku string, qty int, token string) error
	Release(ctx context.Context, sku string, qty int, token string) error
}

// EventPublisher is the fire-and-forget notification sink. Publishing never
// affects a saga's outcome.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderPatch carries the optional fields of an order update. Nil fields are
// left unchanged.
type OrderPatch struct {
	UserID *string
	Total  *decimal.Decimal
	Status *string
	Items  *[]models.OrderItem
}

// OrderService orchestrates the order fulfillment saga: remote validation,
// sequential inventory reservation with compensation on partial failure,
// persistence, timeline logging and notification publishing.
type OrderService struct {
	orderRepo  repositories.OrderRepository
	eventRepo  repositories.OrderEventRepository
	users      UserDirectory
	inventory  InventoryLedger
	orderCache *cache.OrderCache
	publisher  EventPublisher
}

// NewOrderService creates a new OrderService. orderCache and publisher may be
// nil; caching and notifications are then skipped.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	eventRepo repositories.OrderEventRepository,
	users UserDirectory,
	inventory InventoryLedger,
	orderCache *cache.OrderCache,
	publisher EventPublisher,
) *OrderService {
	return &OrderService{
		orderRepo:  orderRepo,
		eventRepo:  eventRepo,
		users:      users,
		inventory:  inventory,
		orderCache: orderCache,
		publisher:  publisher,
	}
}

// GetOrder retrieves a single order, owner or admin only.
func (s *OrderService) GetOrder(ctx context.Context, orderID string, actor models.Actor) (*models.Order, error) {
	order, cached := s.cachedOrder(ctx, orderID)
	if order == nil {
		var err error
		order, err = s.orderRepo.GetByID(orderID)
		if err != nil {
			if errors.Is(err, repositories.ErrOrderNotFound) {
				return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
			}
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	if !actor.IsAdmin() && order.UserID != actor.ID {
		return nil, fmt.Errorf("%w: not authorized to view this order", ErrForbidden)
	}

	if !cached && s.orderCache != nil {
		if err := s.orderCache.Set(ctx, order); err != nil {
			log.Printf("Warning: failed to cache order %s: %v", order.ID, err)
		}
	}
	return order, nil
}

// ListOrders returns all orders for admins, otherwise the actor's own orders.
func (s *OrderService) ListOrders(actor models.Actor) ([]models.Order, error) {
	if actor.IsAdmin() {
		orders, err := s.orderRepo.GetAll()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return orders, nil
	}
	orders, err := s.orderRepo.GetByUserID(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return orders, nil
}

// GetTimeline returns the order's events in non-decreasing creation order,
// owner or admin only.
func (s *OrderService) GetTimeline(ctx context.Context, orderID string, actor models.Actor) ([]models.OrderEvent, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !actor.IsAdmin() && order.UserID != actor.ID {
		return nil, fmt.Errorf("%w: not authorized to view this order's timeline", ErrForbidden)
	}

	events, err := s.eventRepo.ListByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return events, nil
}

// CreateOrder runs the create saga: duplicate-id check, authorization, pure
// validation, remote validation, sequential reservation with compensation,
// persistence and timeline logging.
//
// If persistence fails after reservation succeeded, the reservation is not
// rolled back; compensation only covers failures inside the reservation loop
// itself.
func (s *OrderService) CreateOrder(ctx context.Context, order *models.Order, actor models.Actor) (*models.Order, error) {
	if order.Status == "" {
		order.Status = models.StatusPending
	}
	if !models.IsValidStatus(order.Status) {
		return nil, s.createFailure(fmt.Errorf("%w: invalid order status: %s", ErrValidation, order.Status))
	}

	// Idempotency by id only: a retried create under a new id double-reserves.
	if _, err := s.orderRepo.GetByID(order.ID); err == nil {
		return nil, s.createFailure(fmt.Errorf("%w: order ID %s already exists", ErrValidation, order.ID))
	} else if !errors.Is(err, repositories.ErrOrderNotFound) {
		return nil, s.createFailure(fmt.Errorf("%w: %v", ErrPersistence, err))
	}

	if !actor.IsAdmin() && order.UserID != actor.ID {
		return nil, s.createFailure(fmt.Errorf("%w: can only create orders for yourself", ErrForbidden))
	}

	if len(order.Items) > 0 {
		if err := ValidateOrderItems(order.Items); err != nil {
			return nil, s.createFailure(fmt.Errorf("%w: %v", ErrValidation, err))
		}
		if err := ValidateOrderTotal(order.Items, order.Total); err != nil {
			return nil, s.createFailure(fmt.Errorf("%w: %v", ErrValidation, err))
		}
	}

	if err := s.validateRemote(ctx, order, actor.Token); err != nil {
		return nil, s.createFailure(err)
	}

	if len(order.Items) > 0 && order.Status != models.StatusCancelled {
		if err := s.reserveWithCompensation(ctx, order.Items, actor.Token); err != nil {
			return nil, s.createFailure(err)
		}
	}

	if err := s.orderRepo.Create(order); err != nil {
		log.Printf("Order %s could not be persisted after inventory was reserved; reserved stock is not rolled back on this path", order.ID)
		return nil, s.createFailure(fmt.Errorf("%w: %v", ErrPersistence, err))
	}

	s.appendEvent(&models.OrderEvent{
		OrderID:     order.ID,
		EventType:   models.EventTypeCreated,
		Description: fmt.Sprintf("Order created with status '%s'", order.Status),
		NewValue:    order.Status,
		UserID:      actor.ID,
	})

	metrics.OrdersCreated.Inc()
	s.invalidateCache(ctx, order.ID)
	s.notify("order.created", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"status":   order.Status,
		"total":    order.Total.StringFixed(2),
	})

	return order, nil
}

// UpdateOrder runs the update saga. Status transitions are checked against
// the transition guard before any inventory is touched; moving into
// "cancelled" releases inventory best-effort, moving out of "cancelled"
// re-reserves it.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID string, patch OrderPatch, actor models.Actor) (*models.Order, error) {
	existing, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, s.updateFailure(fmt.Errorf("%w: order %s", ErrNotFound, orderID))
		}
		return nil, s.updateFailure(fmt.Errorf("%w: %v", ErrPersistence, err))
	}

	if !actor.IsAdmin() && existing.UserID != actor.ID {
		return nil, s.updateFailure(fmt.Errorf("%w: not authorized to update this order", ErrForbidden))
	}

	if patch.Items != nil && len(*patch.Items) > 0 {
		if err := ValidateOrderItems(*patch.Items); err != nil {
			return nil, s.updateFailure(fmt.Errorf("%w: %v", ErrValidation, err))
		}
		if patch.Total != nil {
			if err := ValidateOrderTotal(*patch.Items, *patch.Total); err != nil {
				return nil, s.updateFailure(fmt.Errorf("%w: %v", ErrValidation, err))
			}
		}
	}

	statusChanged := false
	oldStatus := existing.Status
	if patch.Status != nil && *patch.Status != existing.Status {
		newStatus := *patch.Status
		statusChanged = true

		if err := ValidateStatusTransition(oldStatus, newStatus); err != nil {
			return nil, s.updateFailure(fmt.Errorf("%w: %v", ErrValidation, err))
		}

		if newStatus == models.StatusCancelled && oldStatus != models.StatusCancelled {
			// Best effort: keep releasing the remaining items even if one fails.
			s.releaseAll(ctx, existing.Items, actor.Token)
		} else if oldStatus == models.StatusCancelled && newStatus != models.StatusCancelled {
			// Reactivation re-reserves in list order. A failure aborts the
			// update without compensating the already-reserved prefix.
			for _, item := range existing.Items {
				if err := s.inventory.Reserve(ctx, item.SKU, item.Quantity, actor.Token); err != nil {
					return nil, s.updateFailure(fmt.Errorf("failed to deduct inventory: %w", classifyInventoryErr(err)))
				}
				metrics.InventoryReservations.Inc()
			}
		}
	}

	updated := *existing
	if patch.UserID != nil {
		updated.UserID = *patch.UserID
	}
	if patch.Total != nil {
		updated.Total = *patch.Total
	}
	if patch.Status != nil {
		updated.Status = *patch.Status
	}
	if patch.Items != nil {
		updated.Items = *patch.Items
	}

	if err := s.orderRepo.Update(&updated); err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return nil, s.updateFailure(fmt.Errorf("%w: order %s", ErrNotFound, orderID))
		}
		return nil, s.updateFailure(fmt.Errorf("%w: %v", ErrPersistence, err))
	}

	if statusChanged {
		s.appendEvent(&models.OrderEvent{
			OrderID:     orderID,
			EventType:   models.EventTypeStatusChanged,
			Description: fmt.Sprintf("Status changed from '%s' to '%s'", oldStatus, updated.Status),
			OldValue:    oldStatus,
			NewValue:    updated.Status,
			UserID:      actor.ID,
		})
		s.notify("order.status_changed", map[string]interface{}{
			"order_id":   orderID,
			"old_status": oldStatus,
			"new_status": updated.Status,
		})
	} else {
		s.appendEvent(&models.OrderEvent{
			OrderID:     orderID,
			EventType:   models.EventTypeUpdated,
			Description: "Order details updated",
			UserID:      actor.ID,
		})
		s.notify("order.updated", map[string]interface{}{
			"order_id": orderID,
			"user_id":  updated.UserID,
			"status":   updated.Status,
		})
	}

	s.invalidateCache(ctx, orderID)
	return &updated, nil
}

// DeleteOrder removes an order and its timeline events in one transaction,
// events first. Stock consumed by the order is not restored.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string, actor models.Actor) error {
	existing, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if !actor.IsAdmin() && existing.UserID != actor.ID {
		return fmt.Errorf("%w: not authorized to delete this order", ErrForbidden)
	}

	if err := s.orderRepo.DeleteWithEvents(orderID); err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return fmt.Errorf("%w: order %s", ErrNotFound, orderID)
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.invalidateCache(ctx, orderID)
	s.notify("order.deleted", map[string]interface{}{
		"order_id": orderID,
	})
	return nil
}

// validateRemote confirms the owning user exists, every SKU exists and stock
// covers every item. A transport failure during any check surfaces as
// ErrServiceUnavailable, distinct from a business validation failure.
func (s *OrderService) validateRemote(ctx context.Context, order *models.Order, token string) error {
	exists, err := s.users.Exists(ctx, order.UserID, token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if !exists {
		return fmt.Errorf("%w: user with ID %s does not exist", ErrValidation, order.UserID)
	}

	for _, item := range order.Items {
		available, currentQty, err := s.inventory.CheckStock(ctx, item.SKU, item.Quantity, token)
		if err != nil {
			if errors.Is(err, clients.ErrSKUNotFound) {
				return fmt.Errorf("%w: inventory item with SKU '%s' does not exist", ErrValidation, item.SKU)
			}
			return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
		}
		if !available {
			return fmt.Errorf("%w: insufficient stock for SKU '%s'. Available: %d, Required: %d",
				ErrValidation, item.SKU, currentQty, item.Quantity)
		}
	}
	return nil
}

// reserveWithCompensation reserves every item sequentially in list order. If
// any reservation fails, the already-reserved prefix is released in the same
// order; compensation failures are logged and the original failure is
// returned.
func (s *OrderService) reserveWithCompensation(ctx context.Context, items []models.OrderItem, token string) error {
	var reserved []models.OrderItem
	for _, item := range items {
		if err := s.inventory.Reserve(ctx, item.SKU, item.Quantity, token); err != nil {
			log.Printf("Failed to reserve inventory for SKU '%s': %v", item.SKU, err)
			s.rollbackReservations(ctx, reserved, token)
			return fmt.Errorf("inventory reservation failed: %w", classifyInventoryErr(err))
		}
		metrics.InventoryReservations.Inc()
		log.Printf("Reserved %d units of SKU '%s'", item.Quantity, item.SKU)
		reserved = append(reserved, item)
	}
	return nil
}

// rollbackReservations issues a compensating release for each item of the
// reserved prefix, in reservation order. Failures are logged, never returned.
func (s *OrderService) rollbackReservations(ctx context.Context, reserved []models.OrderItem, token string) {
	if len(reserved) == 0 {
		return
	}
	log.Printf("Rolling back inventory reservations for %d items", len(reserved))
	for _, item := range reserved {
		if err := s.inventory.Release(ctx, item.SKU, item.Quantity, token); err != nil {
			log.Printf("Rollback failed for SKU '%s': %v", item.SKU, err)
			continue
		}
		metrics.CompensatingReleases.Inc()
		log.Printf("Rollback: released %d units of SKU '%s'", item.Quantity, item.SKU)
	}
}

// releaseAll restores inventory for every item, continuing past individual
// failures. Used when an order moves into "cancelled".
func (s *OrderService) releaseAll(ctx context.Context, items []models.OrderItem, token string) {
	failures := 0
	for _, item := range items {
		if err := s.inventory.Release(ctx, item.SKU, item.Quantity, token); err != nil {
			failures++
			log.Printf("Failed to release inventory for SKU '%s': %v", item.SKU, err)
			continue
		}
		metrics.InventoryReleases.Inc()
		log.Printf("Released %d units of SKU '%s'", item.Quantity, item.SKU)
	}
	if failures > 0 {
		log.Printf("Inventory release completed with %d of %d items failed", failures, len(items))
	}
}

// classifyInventoryErr folds a client error into the service taxonomy:
// transport problems are retryable, everything else is a business failure.
func classifyInventoryErr(err error) error {
	if errors.Is(err, clients.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// appendEvent writes a timeline event after the mutation it describes. A
// failed append is logged; it does not fail the saga.
func (s *OrderService) appendEvent(event *models.OrderEvent) {
	if err := s.eventRepo.Append(event); err != nil {
		log.Printf("Warning: failed to append %s event for order %s: %v", event.EventType, event.OrderID, err)
	}
}

func (s *OrderService) invalidateCache(ctx context.Context, orderID string) {
	if s.orderCache == nil {
		return
	}
	if err := s.orderCache.Invalidate(ctx, orderID); err != nil {
		log.Printf("Warning: failed to invalidate cached order %s: %v", orderID, err)
	}
}

func (s *OrderService) cachedOrder(ctx context.Context, orderID string) (*models.Order, bool) {
	if s.orderCache == nil {
		return nil, false
	}
	order, err := s.orderCache.Get(ctx, orderID)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("Warning: cache lookup for order %s failed: %v", orderID, err)
		}
		return nil, false
	}
	return order, true
}

// notify publishes a notification event as detached work; it never affects
// the saga's outcome or latency.
func (s *OrderService) notify(routingKey string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	payload := map[string]interface{}{
		"event_id":  uuid.New().String(),
		"event":     routingKey,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	go func() {
		if err := s.publisher.Publish(routingKey, body); err != nil {
			log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
		}
	}()
}

func (s *OrderService) createFailure(err error) error {
	metrics.OrderOperationFailures.WithLabelValues("create", failureReason(err)).Inc()
	return err
}

func (s *OrderService) updateFailure(err error) error {
	metrics.OrderOperationFailures.WithLabelValues("update", failureReason(err)).Inc()
	return err
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrServiceUnavailable):
		return "service_unavailable"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	default:
		return "unknown"
	}
}
