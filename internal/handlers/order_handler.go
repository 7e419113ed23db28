package handlers

import (
	"errors"
	"fmt"
	"log"

	"ordersvc/internal/models"
	"ordersvc/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Put("/:id", h.HandleUpdateOrder)
	orderRoutes.Delete("/:id", h.HandleDeleteOrder)
	orderRoutes.Get("/:id/timeline", h.HandleGetOrderTimeline)
}

type createOrderRequest struct {
	ID     string             `json:"id" validate:"required,max=64"`
	UserID string             `json:"user_id" validate:"required"`
	Total  decimal.Decimal    `json:"total"`
	Status string             `json:"status"`
	Items  []models.OrderItem `json:"items" validate:"dive"`
}

type updateOrderRequest struct {
	UserID *string             `json:"user_id"`
	Total  *decimal.Decimal    `json:"total"`
	Status *string             `json:"status"`
	Items  *[]models.OrderItem `json:"items" validate:"omitempty,dive"`
}

// actorFromCtx rebuilds the acting identity stored by the auth middleware.
func actorFromCtx(c *fiber.Ctx) models.Actor {
	actor := models.Actor{}
	if v, ok := c.Locals("user_id").(string); ok {
		actor.ID = v
	}
	if v, ok := c.Locals("role").(string); ok {
		actor.Role = v
	}
	if v, ok := c.Locals("token").(string); ok {
		actor.Token = v
	}
	return actor
}

// statusForError maps the service error taxonomy to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrServiceUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{
		"message": err.Error(),
	})
}

// HandleListOrders retrieves orders, owner-scoped unless the actor is admin.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(actorFromCtx(c))
	if err != nil {
		log.Printf("Error listing orders: %v", err)
		return errorResponse(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.service.GetOrder(c.Context(), orderID, actorFromCtx(c))
	if err != nil {
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		return errorResponse(c, err)
	}
	return c.JSON(order)
}

// HandleCreateOrder creates a new order through the fulfillment saga.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	order := &models.Order{
		ID:     req.ID,
		UserID: req.UserID,
		Total:  req.Total,
		Status: req.Status,
		Items:  req.Items,
	}

	created, err := h.service.CreateOrder(c.Context(), order, actorFromCtx(c))
	if err != nil {
		log.Printf("Error creating order %s: %v", req.ID, err)
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateOrder updates an existing order, driving inventory release or
// re-reservation on status transitions.
func (h *OrderHandler) HandleUpdateOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")

	var req updateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing request body for order update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	patch := services.OrderPatch{
		UserID: req.UserID,
		Total:  req.Total,
		Status: req.Status,
		Items:  req.Items,
	}

	updated, err := h.service.UpdateOrder(c.Context(), orderID, patch, actorFromCtx(c))
	if err != nil {
		log.Printf("Error updating order %s: %v", orderID, err)
		return errorResponse(c, err)
	}
	return c.JSON(updated)
}

// HandleDeleteOrder deletes an order and its timeline events.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	if err := h.service.DeleteOrder(c.Context(), orderID, actorFromCtx(c)); err != nil {
		log.Printf("Error deleting order %s: %v", orderID, err)
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleGetOrderTimeline returns the order's audit events, oldest first.
func (h *OrderHandler) HandleGetOrderTimeline(c *fiber.Ctx) error {
	orderID := c.Params("id")
	events, err := h.service.GetTimeline(c.Context(), orderID, actorFromCtx(c))
	if err != nil {
		log.Printf("Error getting timeline for order %s: %v", orderID, err)
		return errorResponse(c, err)
	}
	return c.JSON(events)
}
