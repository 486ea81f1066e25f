package billing

import (
	"errors"
	"net/http"

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

// StartUpgrade godoc
// @Summary Open a premium-plan checkout order
// @Tags billing
// @Produce json
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Router /api/billing/premium/order [post]
func (h *Handler) StartUpgrade(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
		return
	}

	resp, err := h.service.StartUpgrade(c.Request.Context(), identity.UserID, middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// VerifyUpgrade godoc
// @Summary Verify a completed checkout and activate premium
// @Tags billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body VerifyPaymentRequest true "Provider payment proof"
// @Success 200 {object} map[string]interface{}
// @Router /api/billing/premium/verify [post]
func (h *Handler) VerifyUpgrade(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.VerifyUpgrade(c.Request.Context(), identity.UserID, req, middleware.GetIPFromContext(c)); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "premium activated"})
}

// ListUpgrades godoc
// @Summary List the caller's upgrade history
// @Tags billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/billing/premium [get]
func (h *Handler) ListUpgrades(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
		return
	}

	upgrades, err := h.service.ListUpgrades(c.Request.Context(), identity.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list upgrades"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": upgrades})
}
