package middleware

import (
	"strings"

	"fleamarket_go/config"
	"fleamarket_go/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 会话校验中间件
// 从请求头提取Bearer令牌，解析声明后放入上下文，
// 后端调用时每次重新从上下文读取，不做缓存。
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := config.GetSessionClient().CheckToken(parts[1])
		if err != nil {
			utils.Unauthorized(c, "invalid or expired session")
			c.Abort()
			return
		}

		c.Set(config.SessionTokenKey, parts[1])
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)

		c.Next()
	}
}
