package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/ledgerbots/cost_of_sales_app/internal/utils"
)

// APIKeyAuth is a middleware that authenticates requests carrying the bot
// API key directly, bypassing the token exchange. An absent or invalid key
// falls through to the JWT middleware.
func APIKeyAuth(apiKeyHash string, principal string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("x-api-key")
		if apiKey == "" || apiKeyHash == "" {
			c.Next()
			return
		}

		if !utils.CheckAPIKeyHash(apiKey, apiKeyHash) {
			c.Next()
			return
		}

		ctx := context.WithValue(c.Request.Context(), principalKey, principal)
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(principalKey), principal)
		c.Set("authMethod", "api_key")
		c.Next()
	}
}
