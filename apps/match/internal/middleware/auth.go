package middleware

import (
	"net/http"
	"strings"

	"MatchServer/apps/match/internal/svc"
	"MatchServer/consts"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 会话认证中间件。
// 从 Authorization 头提取 Bearer token，经 SessionValidator 校验
// 后将用户信息存入 Context；吊销的会话在这里被拦下。
func AuthMiddleware(validator svc.SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// 客户端请求错误,属于正常业务流程,不记录日志
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    consts.CodeUnauthorized,
				"message": consts.GetMessage(consts.CodeUnauthorized),
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    consts.CodeUnauthorized,
				"message": "认证格式错误",
			})
			c.Abort()
			return
		}

		identity, err := validator.Validate(c.Request.Context(), parts[1])
		if err != nil {
			// Token 无效或会话已吊销,属于正常业务流程,不记录日志
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    consts.CodeInvalidToken,
				"message": consts.GetMessage(consts.CodeInvalidToken),
			})
			c.Abort()
			return
		}

		c.Set("user_id", identity.UserID)
		c.Next()
	}
}

// GetUserID 从 Context 中获取当前登录用户的 id。
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}
