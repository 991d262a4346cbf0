package middleware

import (
	"github.com/mir5/ipadmin/internal/shared/auth"
	"github.com/mir5/ipadmin/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware JWT认证中间件
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "缺少认证信息")
			c.Abort()
			return
		}

		token, err := auth.ExtractTokenFromHeader(authHeader)
		if err != nil {
			response.Unauthorized(c, "无效的认证格式")
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(c, "无效的认证令牌")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("is_admin", claims.IsAdmin)
		c.Set("claims", claims)

		c.Next()
	}
}

// SessionAuthMiddleware 会话认证中间件
func SessionAuthMiddleware(sessionManager *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie("session_id")
		if err != nil {
			response.Unauthorized(c, "未登录")
			c.Abort()
			return
		}

		session, err := sessionManager.GetSession(sessionID)
		if err != nil {
			response.Unauthorized(c, "会话已过期")
			c.Abort()
			return
		}

		sessionManager.UpdateSession(sessionID)

		c.Set("user_id", session.UserID)
		c.Set("username", session.Username)
		c.Set("is_admin", session.IsAdmin)
		c.Set("session_id", sessionID)

		c.Next()
	}
}

// AdminRequired 管理员权限中间件，必须在认证中间件之后使用
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_admin") {
			response.Forbidden(c, "需要管理员权限")
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUserID 从上下文获取当前用户ID
func CurrentUserID(c *gin.Context) uint {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
