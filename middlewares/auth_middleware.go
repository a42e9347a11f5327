package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservation/utils"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// AuthMiddleware resolves the caller from a "Bearer" Authorization header.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, errors.New("authorization header missing"))
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, errors.New("invalid token format"))
			return
		}

		if err := setClaims(c, strings.TrimPrefix(authHeader, "Bearer ")); err != nil {
			abortUnauthorized(c, err)
			return
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, tokenString string) error {
	claims, err := utils.ParseToken(tokenString)
	if err != nil || claims == nil {
		return errors.New("invalid or expired token")
	}
	if claims.UserID == 0 {
		return errors.New("invalid user ID in token")
	}
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
	return nil
}

func abortUnauthorized(c *gin.Context, err error) {
	utils.RespondAppError(c, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	c.Abort()
}
