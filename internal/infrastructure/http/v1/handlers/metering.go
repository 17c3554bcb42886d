package handlers

import (
	"github.com/gin-gonic/gin"

	"fuelbook/internal/domain/metering"
	"fuelbook/internal/infrastructure/http/v1/dto"
)

// MeteringHandler handles HTTP requests for meters, readings and dips.
type MeteringHandler struct {
	*BaseHandler
	service *metering.Service
}

// NewMeteringHandler creates a new metering handler.
func NewMeteringHandler(base *BaseHandler, service *metering.Service) *MeteringHandler {
	return &MeteringHandler{BaseHandler: base, service: service}
}

// CreateMeter handles POST /meters.
func (h *MeteringHandler) CreateMeter(c *gin.Context) {
	var req dto.CreateMeterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	meterID, err := h.service.RegisterMeter(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, meterID)
}

// CreateReading handles POST /meter-readings.
func (h *MeteringHandler) CreateReading(c *gin.Context) {
	var req dto.CreateReadingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	readingID, err := h.service.RecordReading(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, readingID)
}

// CreateDip handles POST /dip-readings.
func (h *MeteringHandler) CreateDip(c *gin.Context) {
	var req dto.CreateDipRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	dipID, err := h.service.RecordDip(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dipID)
}
