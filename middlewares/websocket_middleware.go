package middlewares

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// WebSocketAuthMiddleware authenticates upgrade requests, which cannot carry
// an Authorization header from a browser, through the "token" query parameter.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			abortUnauthorized(c, errors.New("token query parameter missing"))
			return
		}
		if err := setClaims(c, token); err != nil {
			abortUnauthorized(c, err)
			return
		}
		c.Next()
	}
}
