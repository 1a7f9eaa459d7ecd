package middleware

import "github.com/gin-gonic/gin"

// principalKey is the key used to store the authenticated principal in the
// request context.
const principalKey = contextKey("principal")

// GetPrincipalFromContext retrieves the authenticated principal from the
// Gin context. It returns the principal and a boolean indicating if it was
// found.
func GetPrincipalFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(principalKey)); exists {
		if principal, ok := v.(string); ok {
			return principal, true
		}
		return "", false
	}
	if v := c.Request.Context().Value(principalKey); v != nil {
		return v.(string), true
	}
	return "", false
}
