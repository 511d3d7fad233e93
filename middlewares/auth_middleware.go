package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ecommerce-backend/services"
	"ecommerce-backend/utils"
)

// AuthMiddleware 解析 Bearer token，把调用方身份放进上下文
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		identity, err := utils.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("userID", identity.UserID)
		c.Set("identity", services.Identity{
			UserID:  identity.UserID,
			Roles:   identity.Roles,
			IsAdmin: identity.IsAdmin,
		})
		c.Next()
	}
}

// CallerIdentity 从上下文取出身份
func CallerIdentity(c *gin.Context) (services.Identity, bool) {
	value, exists := c.Get("identity")
	if !exists {
		return services.Identity{}, false
	}
	identity, ok := value.(services.Identity)
	return identity, ok
}
