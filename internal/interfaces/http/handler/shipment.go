package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	shipmentapp "github.com/stockflow/backend/internal/application/shipments"
)

// ShipmentHandler handles restock shipment endpoints
type ShipmentHandler struct {
	BaseHandler
	shipmentService *shipmentapp.Service
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(shipmentService *shipmentapp.Service) *ShipmentHandler {
	return &ShipmentHandler{shipmentService: shipmentService}
}

// Create handles POST /shipments. With no name given one is generated from
// the current date.
func (h *ShipmentHandler) Create(c *gin.Context) {
	var req shipmentapp.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	shipment, err := h.shipmentService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, shipment)
}

// List handles GET /shipments
func (h *ShipmentHandler) List(c *gin.Context) {
	shipments, err := h.shipmentService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipments)
}

// GetByID handles GET /shipments/:id
func (h *ShipmentHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}

	shipment, err := h.shipmentService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// UpdateStatus handles PUT /shipments/:id/status. Marking a shipment ordered
// spawns pre-orders for its named customers; marking it received books the
// stock in.
func (h *ShipmentHandler) UpdateStatus(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}

	var req shipmentapp.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	shipment, err := h.shipmentService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// AddRequest handles POST /shipments/:id/requests
func (h *ShipmentHandler) AddRequest(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}

	var req shipmentapp.AddRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	shipment, err := h.shipmentService.AddRequest(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// BatchAddRequests handles POST /shipments/:id/requests/batch
func (h *ShipmentHandler) BatchAddRequests(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}

	var req shipmentapp.BatchAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	shipment, err := h.shipmentService.BatchAdd(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// UpdateRequestQuantity handles PUT /shipments/requests/:id
func (h *ShipmentHandler) UpdateRequestQuantity(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, err)
		return
	}

	var req shipmentapp.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err)
		return
	}

	shipment, err := h.shipmentService.UpdateRequestQuantity(c.Request.Context(), requestID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// DeleteRequest handles DELETE /shipments/requests/:id
func (h *ShipmentHandler) DeleteRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, err)
		return
	}

	shipment, err := h.shipmentService.DeleteRequest(c.Request.Context(), requestID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shipment)
}

// Delete handles DELETE /shipments/:id. Only shipments still in planning can
// be deleted.
func (h *ShipmentHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}

	if err := h.shipmentService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Invoice handles GET /shipments/:id/invoice
func (h *ShipmentHandler) Invoice(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, err)
		return
	}

	invoice, err := h.shipmentService.Invoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}
