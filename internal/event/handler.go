package event

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kizunalink/kizuna-backend/internal/auth"
	"github.com/kizunalink/kizuna-backend/internal/domain"
	"github.com/kizunalink/kizuna-backend/middleware"
	"github.com/kizunalink/kizuna-backend/utils"
)

type Handler struct {
	service *Service
	storage utils.Storage
}

func NewHandler(service *Service, storage utils.Storage) *Handler {
	return &Handler{service: service, storage: storage}
}

// ===========================
// Create Event
// @Summary Create a scheduled event (premium hosts only)
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateEventRequest true "Event payload"
// @Success 201 {object} map[string]interface{}
// @Router /api/events [post]
func (h *Handler) CreateEvent(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.service.CreateEvent(c.Request.Context(), identity, &req, middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(domain.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": event})
}

// ===========================
// Get Event View
// @Summary Fetch a single event projection
// @Tags events
// @Produce json
// @Param id path uint true "Event ID"
// @Success 200 {object} EventView
// @Router /api/events/{id} [get]
func (h *Handler) GetEvent(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	var requestingUser *uint
	if identity, ok := auth.IdentityFromContext(c); ok {
		uid := identity.UserID
		requestingUser = &uid
	}

	view, err := h.service.GetEventView(c.Request.Context(), requestingUser, eventID)
	if err != nil {
		c.JSON(domain.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": view})
}

// ===========================
// List Events (discovery)
// @Summary List scheduled events with optional filters
// @Tags events
// @Produce json
// @Param city query string false "Filter by city"
// @Param category query string false "Filter by category"
// @Param vibe query string false "Filter by vibe"
// @Param solo_friendly query bool false "Only solo-friendly events"
// @Param search query string false "Title/description search"
// @Param limit query int false "Page size (default 20)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /api/events [get]
func (h *Handler) ListEvents(c *gin.Context) {
	filter := ListFilter{
		City:     c.Query("city"),
		Category: c.Query("category"),
		Vibe:     c.Query("vibe"),
		Search:   c.Query("search"),
	}

	if soloStr := c.Query("solo_friendly"); soloStr != "" {
		solo, err := strconv.ParseBool(soloStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "solo_friendly must be a boolean"})
			return
		}
		filter.SoloFriendly = &solo
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	events, err := h.service.ListEvents(c.Request.Context(), filter)
	if err != nil {
		c.JSON(domain.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": events})
}

// ===========================
// Cancel Event
// @Summary Cancel an event (host only, irreversible)
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path uint true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/events/{id}/cancel [post]
func (h *Handler) CancelEvent(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
		return
	}

	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	event, err := h.service.CancelEvent(c.Request.Context(), identity, eventID, middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(domain.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": event})
}

// ===========================
// My Schedule
// @Summary Events the caller attends or hosts
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/events/mine [get]
func (h *Handler) MySchedule(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
		return
	}

	events, err := h.service.MySchedule(c.Request.Context(), identity.UserID)
	if err != nil {
		c.JSON(domain.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": events})
}

// ===========================
// Upload Cover Image
// @Summary Attach a cover image to an event (host only)
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path uint true "Event ID"
// @Param cover formData file true "Cover image"
// @Success 200 {object} map[string]interface{}
// @Router /api/events/{id}/cover [post]
func (h *Handler) UploadCover(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
		return
	}

	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	file, err := c.FormFile("cover")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cover file is required"})
		return
	}

	url, err := h.storage.Save(file, "events")
	if err != nil {
		c.JSON(domain.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	if err := h.service.SetCoverImage(c.Request.Context(), identity, eventID, url, middleware.GetIPFromContext(c)); err != nil {
		c.JSON(domain.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"cover_image_url": url}})
}

func eventIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return 0, false
	}
	return uint(id), true
}
