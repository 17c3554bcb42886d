package handlers

import (
	"github.com/gin-gonic/gin"

	"fuelbook/internal/domain/variance"
	"fuelbook/internal/infrastructure/http/v1/dto"
	"fuelbook/internal/infrastructure/storage/postgres/recon_repo"
)

// ThresholdHandler handles HTTP requests for stock alert thresholds.
type ThresholdHandler struct {
	*BaseHandler
	service *variance.Service
	repo    *recon_repo.ThresholdRepo
}

// NewThresholdHandler creates a new threshold handler.
func NewThresholdHandler(base *BaseHandler, service *variance.Service, repo *recon_repo.ThresholdRepo) *ThresholdHandler {
	return &ThresholdHandler{BaseHandler: base, service: service, repo: repo}
}

// Create handles POST /thresholds.
func (h *ThresholdHandler) Create(c *gin.Context) {
	var req dto.CreateThresholdRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.CreateThresholds(c.Request.Context(), in); err != nil {
		h.Error(c, err)
		return
	}

	threshold, err := h.repo.GetActiveByTank(c.Request.Context(), in.TankID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, threshold.ID)
}

// GetByTank handles GET /tanks/:id/threshold.
func (h *ThresholdHandler) GetByTank(c *gin.Context) {
	tankID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	threshold, err := h.repo.GetActiveByTank(c.Request.Context(), tankID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, threshold)
}

// RegisterRoutes registers threshold routes.
func (h *ThresholdHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
}
