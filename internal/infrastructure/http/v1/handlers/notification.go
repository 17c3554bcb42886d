package handlers

import (
	"github.com/gin-gonic/gin"

	"fuelbook/internal/core/apperror"
	"fuelbook/internal/domain/variance"
	"fuelbook/internal/infrastructure/http/v1/dto"
	"fuelbook/internal/infrastructure/storage/postgres/recon_repo"
)

// NotificationHandler handles HTTP requests for variance notifications.
type NotificationHandler struct {
	*BaseHandler
	repo *recon_repo.NotificationRepo
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(base *BaseHandler, repo *recon_repo.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{BaseHandler: base, repo: repo}
}

// List handles GET /notifications?stationId= - open notifications,
// newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	stationID, ok := h.ParseIDQuery(c, "stationId")
	if !ok {
		return
	}

	notifications, err := h.repo.ListOpenByStation(c.Request.Context(), stationID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.BaseHandler.List(c, notifications, len(notifications))
}

// UpdateStatus handles PATCH /notifications/:id/status - advances the
// resolution workflow.
func (h *NotificationHandler) UpdateStatus(c *gin.Context) {
	notificationID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateNotificationStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	status := variance.NotificationStatus(req.Status)
	switch status {
	case variance.StatusOpen, variance.StatusInvestigating, variance.StatusResolved:
	default:
		h.Error(c, apperror.NewEnumViolation("notification", "status", req.Status))
		return
	}

	if err := h.repo.UpdateStatus(c.Request.Context(), notificationID, status); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers notification routes.
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.PATCH("/:id/status", h.UpdateStatus)
}
