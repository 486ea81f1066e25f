package reports

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kizunalink/kizuna-backend/internal/auth"
	"github.com/kizunalink/kizuna-backend/internal/domain"
	"github.com/kizunalink/kizuna-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ExportRoster godoc
// @Summary Download an event's attendee roster (host only)
// @Tags reports
// @Produce octet-stream
// @Security BearerAuth
// @Param id path uint true "Event ID"
// @Param format query string false "csv, excel, or pdf (default csv)"
// @Success 200 {file} binary
// @Router /api/events/{id}/attendees/export [get]
func (h *Handler) ExportRoster(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
		return
	}

	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event ID"})
		return
	}

	format := c.DefaultQuery("format", "csv")

	payload, filename, mime, err := h.service.ExportRoster(c.Request.Context(), identity, uint(eventID), format, middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(domain.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, mime, payload)
}
