package handlers

import (
	"github.com/gin-gonic/gin"

	"fuelbook/internal/domain/delivery"
	"fuelbook/internal/infrastructure/http/v1/dto"
	"fuelbook/internal/infrastructure/storage/postgres/inventory_repo"
)

// DeliveryHandler handles HTTP requests for fuel deliveries.
type DeliveryHandler struct {
	*BaseHandler
	service *delivery.Service
	repo    *inventory_repo.DeliveryRepo
}

// NewDeliveryHandler creates a new delivery handler.
func NewDeliveryHandler(base *BaseHandler, service *delivery.Service, repo *inventory_repo.DeliveryRepo) *DeliveryHandler {
	return &DeliveryHandler{BaseHandler: base, service: service, repo: repo}
}

// Create handles POST /deliveries.
func (h *DeliveryHandler) Create(c *gin.Context) {
	var req dto.CreateDeliveryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	deliveryID, err := h.service.Record(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, deliveryID)
}

// Get handles GET /deliveries/:id.
func (h *DeliveryHandler) Get(c *gin.Context) {
	deliveryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	d, err := h.repo.GetByID(c.Request.Context(), deliveryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, d)
}

// ListByTank handles GET /tanks/:id/deliveries.
func (h *DeliveryHandler) ListByTank(c *gin.Context) {
	tankID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	limit := h.ParseIntQuery(c, "limit", 50)

	deliveries, err := h.repo.ListByTank(c.Request.Context(), tankID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.List(c, deliveries, len(deliveries))
}

// RegisterRoutes registers delivery routes.
func (h *DeliveryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
}
