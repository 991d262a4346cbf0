package handlers

import (
	"strconv"

	"github.com/mir5/ipadmin/internal/server/middleware"
	"github.com/mir5/ipadmin/internal/server/services"
	"github.com/mir5/ipadmin/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// AssignmentHandler 分配记录处理器
type AssignmentHandler struct {
	assignmentService *services.AssignmentService
	requestService    *services.RequestService
}

// NewAssignmentHandler 创建分配记录处理器
func NewAssignmentHandler(assignmentService *services.AssignmentService, requestService *services.RequestService) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		requestService:    requestService,
	}
}

// UpdateDescriptionRequest 更新备注请求
type UpdateDescriptionRequest struct {
	Description string `json:"description"`
}

// SetMonitoredRequest 设置监控标记请求
type SetMonitoredRequest struct {
	IsMonitored bool `json:"is_monitored"`
}

// ListByRequest 查询申请单名下的分配记录，普通用户只能查看自己的
func (ah *AssignmentHandler) ListByRequest(c *gin.Context) {
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的申请单ID")
		return
	}

	request, err := ah.requestService.GetRequest(uint(requestID))
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}
	if !c.GetBool("is_admin") && request.UserID != middleware.CurrentUserID(c) {
		response.Forbidden(c, "无权查看他人的分配记录")
		return
	}

	assignments, err := ah.assignmentService.ListByRequest(uint(requestID))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, assignments)
}

// ListMyAssignments 查询当前用户名下的全部分配记录
func (ah *AssignmentHandler) ListMyAssignments(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		response.Unauthorized(c, "用户未认证")
		return
	}

	assignments, err := ah.assignmentService.ListByUser(userID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, assignments)
}

// UpdateDescription 更新分配记录备注
func (ah *AssignmentHandler) UpdateDescription(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的分配记录ID")
		return
	}

	var req UpdateDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	err = ah.assignmentService.UpdateDescription(uint(id), middleware.CurrentUserID(c), c.GetBool("is_admin"), req.Description)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "备注更新成功", nil)
}

// SetMonitored 设置监控标记，仅限管理员
func (ah *AssignmentHandler) SetMonitored(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的分配记录ID")
		return
	}

	var req SetMonitoredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	if err := ah.assignmentService.SetMonitored(uint(id), req.IsMonitored); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "监控标记更新成功", nil)
}
