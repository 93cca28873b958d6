package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/stockflow/backend/internal/application/orders"
)

// OrderHandler handles order lifecycle endpoints
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles POST /orders. Stock is reserved atomically when available;
// otherwise the order starts out awaiting stock.
func (h *OrderHandler) Create(c *gin.Context) {
	var req orderapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// List handles GET /orders with an optional "status" filter
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orderService.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// GetByID handles GET /orders/:id
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Complete handles POST /orders/:id/complete
func (h *OrderHandler) Complete(c *gin.Context) {
	h.lifecycle(c, h.orderService.Complete)
}

// Cancel handles POST /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	h.lifecycle(c, h.orderService.Cancel)
}

// Hold handles POST /orders/:id/hold
func (h *OrderHandler) Hold(c *gin.Context) {
	h.lifecycle(c, h.orderService.Hold)
}

// Resume handles POST /orders/:id/resume
func (h *OrderHandler) Resume(c *gin.Context) {
	h.lifecycle(c, h.orderService.Resume)
}

// Allocate handles POST /orders/:id/allocate, retrying the stock reservation
// for an order awaiting stock
func (h *OrderHandler) Allocate(c *gin.Context) {
	h.lifecycle(c, h.orderService.Allocate)
}

func (h *OrderHandler) lifecycle(c *gin.Context, op func(ctx context.Context, id uuid.UUID) (*orderapp.OrderResponse, error)) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}

	order, err := op(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
