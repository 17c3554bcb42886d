package handlers

import (
	"github.com/gin-gonic/gin"

	"fuelbook/internal/domain/reconciliation"
	"fuelbook/internal/infrastructure/http/v1/dto"
	"fuelbook/internal/infrastructure/storage/postgres/ledger_repo"
	"fuelbook/internal/infrastructure/storage/postgres/recon_repo"
)

// ReconciliationHandler handles HTTP requests for daily closes.
type ReconciliationHandler struct {
	*BaseHandler
	service *reconciliation.Service
	repo    *recon_repo.ReconRepo
	entries *ledger_repo.EntryRepo
}

// NewReconciliationHandler creates a new reconciliation handler.
func NewReconciliationHandler(
	base *BaseHandler,
	service *reconciliation.Service,
	repo *recon_repo.ReconRepo,
	entries *ledger_repo.EntryRepo,
) *ReconciliationHandler {
	return &ReconciliationHandler{BaseHandler: base, service: service, repo: repo, entries: entries}
}

// Process handles POST /reconciliations - runs the daily close.
func (h *ReconciliationHandler) Process(c *gin.Context) {
	var req dto.ProcessReconciliationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	reconID, err := h.service.Process(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, reconID)
}

// Get handles GET /reconciliations/:id.
func (h *ReconciliationHandler) Get(c *gin.Context) {
	reconID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	record, err := h.repo.GetByID(c.Request.Context(), reconID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, record)
}

// ConsumptionLog handles GET /reconciliations/:id/consumption-log - the
// FIFO drain trace in consumption order.
func (h *ReconciliationHandler) ConsumptionLog(c *gin.Context) {
	reconID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	log, err := h.repo.GetConsumptionLog(c.Request.Context(), reconID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.List(c, log, len(log))
}

// LedgerEntries handles GET /reconciliations/:id/ledger-entries.
func (h *ReconciliationHandler) LedgerEntries(c *gin.Context) {
	reconID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.entries.GetByReconciliation(c.Request.Context(), reconID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.List(c, entries, len(entries))
}

// ListByTank handles GET /tanks/:id/reconciliations.
func (h *ReconciliationHandler) ListByTank(c *gin.Context) {
	tankID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	limit := h.ParseIntQuery(c, "limit", 30)

	records, err := h.repo.ListByTank(c.Request.Context(), tankID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.List(c, records, len(records))
}

// RegisterRoutes registers reconciliation routes.
func (h *ReconciliationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Process)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/consumption-log", h.ConsumptionLog)
	rg.GET("/:id/ledger-entries", h.LedgerEntries)
}
