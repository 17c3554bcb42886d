package handlers

import (
	"github.com/gin-gonic/gin"

	"fuelbook/internal/infrastructure/storage/postgres/inventory_repo"
)

// TankHandler handles HTTP reads for tanks and their cost layers.
type TankHandler struct {
	*BaseHandler
	tanks  *inventory_repo.TankRepo
	layers *inventory_repo.LayerRepo
}

// NewTankHandler creates a new tank handler.
func NewTankHandler(base *BaseHandler, tanks *inventory_repo.TankRepo, layers *inventory_repo.LayerRepo) *TankHandler {
	return &TankHandler{BaseHandler: base, tanks: tanks, layers: layers}
}

// Get handles GET /tanks/:id.
func (h *TankHandler) Get(c *gin.Context) {
	tankID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	t, err := h.tanks.GetByID(c.Request.Context(), tankID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, t)
}

// Layers handles GET /tanks/:id/layers - all cost layers in FIFO order.
func (h *TankHandler) Layers(c *gin.Context) {
	tankID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	layers, err := h.layers.GetByTank(c.Request.Context(), tankID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.List(c, layers, len(layers))
}

// ListByStation handles GET /stations/:id/tanks.
func (h *TankHandler) ListByStation(c *gin.Context) {
	stationID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	tanks, err := h.tanks.ListByStation(c.Request.Context(), stationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.List(c, tanks, len(tanks))
}
