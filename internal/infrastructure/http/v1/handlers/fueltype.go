package handlers

import (
	"github.com/gin-gonic/gin"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/domain/fuel"
	"fuelbook/internal/schema"
)

// FuelTypeHandler exposes the fuel-type ranges per record kind.
type FuelTypeHandler struct {
	*BaseHandler
}

// NewFuelTypeHandler creates a new fuel type handler.
func NewFuelTypeHandler(base *BaseHandler) *FuelTypeHandler {
	return &FuelTypeHandler{BaseHandler: base}
}

// List handles GET /fuel-types?kind= - the permitted fuel range for a
// record kind, or the full range when no kind is given.
func (h *FuelTypeHandler) List(c *gin.Context) {
	raw := c.Query("kind")
	if raw == "" {
		types := fuel.AllTypes()
		h.BaseHandler.List(c, types, len(types))
		return
	}

	kind := schema.RecordKind(raw)
	if _, ok := schema.DefinitionFor(kind); !ok {
		h.Error(c, apperror.NewInvalidInput("unknown record kind").WithDetail("kind", raw))
		return
	}

	types := schema.FuelTypesFor(kind)
	h.BaseHandler.List(c, types, len(types))
}

// RegisterRoutes registers fuel type routes.
func (h *FuelTypeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
}
