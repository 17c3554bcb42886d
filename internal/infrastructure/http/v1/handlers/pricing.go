package handlers

import (
	"github.com/gin-gonic/gin"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/domain/fuel"
	"fuelbook/internal/domain/pricing"
	"fuelbook/internal/infrastructure/http/v1/dto"
	"fuelbook/internal/infrastructure/storage/postgres/ledger_repo"
)

// PricingHandler handles HTTP requests for selling prices.
type PricingHandler struct {
	*BaseHandler
	service *pricing.Service
	repo    *ledger_repo.PriceRepo
}

// NewPricingHandler creates a new pricing handler.
func NewPricingHandler(base *BaseHandler, service *pricing.Service, repo *ledger_repo.PriceRepo) *PricingHandler {
	return &PricingHandler{BaseHandler: base, service: service, repo: repo}
}

// Create handles POST /prices - sets a new price, rolling over the prior one.
func (h *PricingHandler) Create(c *gin.Context) {
	var req dto.CreatePriceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	priceID, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, priceID)
}

// Current handles GET /prices/current?stationId=&fuelType=.
func (h *PricingHandler) Current(c *gin.Context) {
	stationID, ok := h.ParseIDQuery(c, "stationId")
	if !ok {
		return
	}
	fuelType := fuel.Type(c.Query("fuelType"))

	price, err := h.service.Current(c.Request.Context(), stationID, fuelType)
	if err != nil {
		h.Error(c, err)
		return
	}
	if price == nil {
		h.Error(c, apperror.NewNotFound("selling price", string(fuelType)))
		return
	}

	h.OK(c, price)
}

// History handles GET /prices/history?stationId=&limit= - legacy-range
// price change rows, newest first.
func (h *PricingHandler) History(c *gin.Context) {
	stationID, ok := h.ParseIDQuery(c, "stationId")
	if !ok {
		return
	}
	limit := h.ParseIntQuery(c, "limit", 50)

	changes, err := h.repo.History(c.Request.Context(), stationID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.List(c, changes, len(changes))
}

// RegisterRoutes registers pricing routes.
func (h *PricingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/current", h.Current)
	rg.GET("/history", h.History)
}
