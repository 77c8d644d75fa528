package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"symptom-diary-server/internal/config"
	"symptom-diary-server/internal/utils"
)

// Actor is the caller identity resolved once per request by AuthMiddleware.
// Admin is an ordinary patient identity with the administrator flag set.
type Actor struct {
	UserID  string
	IsAdmin bool
}

const actorContextKey = "actor"

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		c.Set(actorContextKey, Actor{UserID: claims.UserID, IsAdmin: claims.IsAdmin})
		c.Next()
	}
}

// AdminOnly rejects callers without the administrator flag. It must run
// after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			utils.InternalServerError(c, "Actor not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}
		if !actor.IsAdmin {
			utils.Forbidden(c, "Administrator access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetActor returns the authenticated caller stored by AuthMiddleware.
func GetActor(c *gin.Context) (Actor, bool) {
	value, exists := c.Get(actorContextKey)
	if !exists {
		return Actor{}, false
	}
	actor, ok := value.(Actor)
	return actor, ok
}
