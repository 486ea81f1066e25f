package auth

import "github.com/gin-gonic/gin"

// ContextKey is where middleware stores the resolved Identity on the
// gin context.
const ContextKey = "auth.identity"

func IdentityFromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return Identity{}, false
	}
	identity, ok := v.(Identity)
	return identity, ok
}

func SetIdentity(c *gin.Context, identity Identity) {
	c.Set(ContextKey, identity)
}
