package attendance

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kizunalink/kizuna-backend/internal/auth"
	"github.com/kizunalink/kizuna-backend/internal/domain"
	"github.com/kizunalink/kizuna-backend/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ===========================
// Join
// @Summary RSVP to an event (idempotent)
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path uint true "Event ID"
// @Param request body JoinRequest false "Optional greeting and after-party interest"
// @Success 201 {object} map[string]interface{}
// @Router /api/events/{id}/attendance [post]
func (h *Handler) Join(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
		return
	}

	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var req JoinRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	attendance, err := h.service.RequestAttendance(c.Request.Context(), identity, eventID, &req, middleware.GetIPFromContext(c))
	if err != nil {
		// A repeat join is a success for retrying clients.
		if errors.Is(err, domain.ErrAlreadyAttending) {
			c.JSON(http.StatusOK, gin.H{"message": "already attending"})
			return
		}
		c.JSON(domain.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": attendance})
}

// ===========================
// Withdraw
// @Summary Withdraw an RSVP (no-op if absent)
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path uint true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/events/{id}/attendance [delete]
func (h *Handler) Withdraw(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
		return
	}

	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	if err := h.service.WithdrawAttendance(c.Request.Context(), identity, eventID, middleware.GetIPFromContext(c)); err != nil {
		c.JSON(domain.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "withdrawn"})
}

// ===========================
// Roster
// @Summary List attendees of an event (host only)
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path uint true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/events/{id}/attendees [get]
func (h *Handler) Roster(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
		return
	}

	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	entries, err := h.service.Roster(c.Request.Context(), identity, eventID)
	if err != nil {
		c.JSON(domain.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func eventIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return 0, false
	}
	return uint(id), true
}
