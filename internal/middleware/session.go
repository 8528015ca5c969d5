package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"nova-chat-go/pkg/token"
)

// SessionAuth 创建一个 Gin 中间件，用于会话令牌认证。
// 它从 Authorization 请求头提取令牌，验证后将 sessionId 写入 Gin 上下文。
func SessionAuth(sessionManager *token.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "请求未包含授权头"})
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效的授权头格式"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

		claims, err := sessionManager.Verify(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "无效或已过期的会话令牌"})
			return
		}

		// 将会话标识存储在 context 中，供后续处理函数使用
		c.Set("sessionId", claims.SessionID)
		c.Next()
	}
}
