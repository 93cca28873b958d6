package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	reportapp "github.com/stockflow/backend/internal/application/report"
)

// DashboardHandler handles dashboard reporting endpoints
type DashboardHandler struct {
	BaseHandler
	reportService *reportapp.Service
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(reportService *reportapp.Service) *DashboardHandler {
	return &DashboardHandler{reportService: reportService}
}

// Stats handles GET /dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.reportService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// LowStock handles GET /dashboard/low-stock with an optional "limit"
// parameter
func (h *DashboardHandler) LowStock(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			h.BadRequest(c, err)
			return
		}
		limit = parsed
	}

	items, err := h.reportService.LowStock(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}
