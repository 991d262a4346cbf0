package handlers

import (
	"github.com/mir5/ipadmin/internal/shared/auth"
	"github.com/mir5/ipadmin/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户管理处理器，仅限管理员
type UserHandler struct {
	userService *auth.UserService
}

// NewUserHandler 创建用户管理处理器
func NewUserHandler(userService *auth.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required,min=6"`
	IsAdmin  bool   `json:"is_admin"`
}

// ListUsers 查询用户列表
func (uh *UserHandler) ListUsers(c *gin.Context) {
	users, err := uh.userService.ListUsers()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	// 不返回密码散列
	list := make([]map[string]interface{}, 0, len(users))
	for _, u := range users {
		list = append(list, map[string]interface{}{
			"id":         u.ID,
			"username":   u.Username,
			"email":      u.Email,
			"is_admin":   u.IsAdmin,
			"is_active":  u.IsActive,
			"created_at": u.CreatedAt,
			"last_login": u.LastLogin,
		})
	}

	response.Success(c, list)
}

// CreateUser 创建用户
func (uh *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	user, err := uh.userService.CreateUser(req.Username, req.Email, req.Password, req.IsAdmin)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "用户创建成功", map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
		"is_admin": user.IsAdmin,
	})
}
