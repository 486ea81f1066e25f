package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kizunalink/kizuna-backend/internal/auth"
	"github.com/kizunalink/kizuna-backend/internal/domain"
)

// RequirePremium guards routes reserved for premium members. The event
// service re-checks against the stored user record; this middleware
// rejects obvious non-premium callers before they reach it.
func RequirePremium() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := auth.IdentityFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrUnauthenticated.Error()})
			return
		}
		if !identity.Premium {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": domain.ErrUnauthorized.Error()})
			return
		}
		c.Next()
	}
}
