package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kizunalink/kizuna-backend/internal/auth"
)

// AuthMiddleware validates the Bearer token and stores the resolved
// Identity on the request context. Requests without a valid token are
// rejected with 401.
func AuthMiddleware(authSvc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed Authorization header"})
			return
		}

		identity, err := authSvc.ResolveIdentity(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		auth.SetIdentity(c, identity)
		c.Set("user_id", identity.UserID)
		c.Next()
	}
}

// OptionalAuth resolves an Identity when a Bearer token is present but
// lets anonymous requests through. Handlers that gate fields on the
// caller (join link visibility) read the identity themselves.
func OptionalAuth(authSvc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if identity, err := authSvc.ResolveIdentity(token); err == nil {
				auth.SetIdentity(c, identity)
				c.Set("user_id", identity.UserID)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}
