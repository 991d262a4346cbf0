package handlers

import (
	"github.com/mir5/ipadmin/internal/server/middleware"
	"github.com/mir5/ipadmin/internal/shared/auth"
	"github.com/mir5/ipadmin/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	userService    *auth.UserService
	jwtService     *auth.JWTService
	sessionManager *auth.SessionManager
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(userService *auth.UserService, jwtService *auth.JWTService, sessionManager *auth.SessionManager) *AuthHandler {
	return &AuthHandler{
		userService:    userService,
		jwtService:     jwtService,
		sessionManager: sessionManager,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         interface{} `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
}

// RefreshTokenRequest 刷新令牌请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// Login 用户登录
func (ah *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	user, err := ah.userService.Login(req.Username, req.Password)
	if err != nil {
		response.Unauthorized(c, "用户名或密码错误")
		return
	}

	tokenPair, err := ah.jwtService.GenerateTokenPair(user)
	if err != nil {
		response.InternalError(c, "生成令牌失败")
		return
	}

	session, err := ah.sessionManager.CreateSession(user, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		response.InternalError(c, "创建会话失败")
		return
	}

	loginResponse := LoginResponse{
		User: map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
			"is_admin": user.IsAdmin,
		},
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}

	// 设置会话cookie (1小时有效期)
	c.SetCookie("session_id", session.ID, 3600, "/", "", false, true)

	response.Success(c, loginResponse)
}

// RefreshToken 刷新访问令牌
func (ah *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	claims, err := ah.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		response.Unauthorized(c, "刷新令牌无效")
		return
	}

	user, err := ah.userService.GetUserByID(claims.UserID)
	if err != nil {
		response.Unauthorized(c, "用户不存在")
		return
	}

	tokenPair, err := ah.jwtService.GenerateTokenPair(user)
	if err != nil {
		response.InternalError(c, "生成令牌失败")
		return
	}

	response.Success(c, map[string]interface{}{
		"access_token": tokenPair.AccessToken,
		"expires_in":   tokenPair.ExpiresIn,
	})
}

// GetCurrentUser 获取当前用户信息
func (ah *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		response.Unauthorized(c, "用户未认证")
		return
	}

	user, err := ah.userService.GetUserByID(userID)
	if err != nil {
		response.NotFound(c, "用户不存在")
		return
	}

	response.Success(c, map[string]interface{}{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"is_admin":   user.IsAdmin,
		"is_active":  user.IsActive,
		"created_at": user.CreatedAt,
		"last_login": user.LastLogin,
	})
}

// Logout 用户注销
func (ah *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie("session_id")
	if err == nil && sessionID != "" {
		ah.sessionManager.DestroySession(sessionID)
	}

	// 清除cookie
	c.SetCookie("session_id", "", -1, "/", "", false, true)

	response.SuccessWithMessage(c, "注销成功", nil)
}

// ChangePassword 修改密码
func (ah *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		response.Unauthorized(c, "用户未认证")
		return
	}

	if err := ah.userService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// 改密后强制重新登录
	ah.sessionManager.DestroyUserSessions(userID)

	response.SuccessWithMessage(c, "密码修改成功", nil)
}
