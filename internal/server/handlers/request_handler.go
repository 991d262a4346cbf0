package handlers

import (
	"errors"
	"strconv"

	"github.com/mir5/ipadmin/internal/server/middleware"
	"github.com/mir5/ipadmin/internal/server/services"
	"github.com/mir5/ipadmin/internal/shared/ipaddr"
	"github.com/mir5/ipadmin/internal/shared/response"
	"github.com/mir5/ipadmin/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

// RequestHandler 申请单处理器
type RequestHandler struct {
	requestService *services.RequestService
}

// NewRequestHandler 创建申请单处理器
func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
	}
}

// SubmitRequestRequest 提交申请请求
type SubmitRequestRequest struct {
	VlanID       uint   `json:"vlan_id" binding:"required"`
	IPCount      uint   `json:"ip_count" binding:"required"`
	Reason       string `json:"reason" binding:"required"`
	DurationDays uint   `json:"duration_days" binding:"required"`
}

// ReviewRequestRequest 审批请求
// approve为true时必须携带pool_id；manual_start/manual_end非空时走手动分配
type ReviewRequestRequest struct {
	Approve      bool   `json:"approve"`
	PoolID       uint   `json:"pool_id"`
	AdminComment string `json:"admin_comment"`
	ManualStart  string `json:"manual_start"`
	ManualEnd    string `json:"manual_end"`
}

// SubmitRequest 用户提交IP申请
func (rh *RequestHandler) SubmitRequest(c *gin.Context) {
	var req SubmitRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		response.Unauthorized(c, "用户未认证")
		return
	}

	request, err := rh.requestService.SubmitRequest(&services.SubmitRequestInput{
		UserID:       userID,
		VlanID:       req.VlanID,
		IPCount:      req.IPCount,
		Reason:       req.Reason,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "申请提交成功", request)
}

// ListMyRequests 查询当前用户的申请单
func (rh *RequestHandler) ListMyRequests(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		response.Unauthorized(c, "用户未认证")
		return
	}

	requests, err := rh.requestService.ListUserRequests(userID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, requests)
}

// ListRequests 管理员按状态查询申请单，默认pending
func (rh *RequestHandler) ListRequests(c *gin.Context) {
	page, size := utils.ParsePagination(c)

	requests, total, err := rh.requestService.ListRequestsByStatus(c.Query("status"), page, size)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Paged(c, requests, total, page, size)
}

// GetRequest 查询申请单详情，普通用户只能查看自己的
func (rh *RequestHandler) GetRequest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的申请单ID")
		return
	}

	request, err := rh.requestService.GetRequest(uint(id))
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	if !c.GetBool("is_admin") && request.UserID != middleware.CurrentUserID(c) {
		response.Forbidden(c, "无权查看他人的申请单")
		return
	}

	response.Success(c, request)
}

// PoolStats 审批前预览地址池容量
func (rh *RequestHandler) PoolStats(c *gin.Context) {
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的申请单ID")
		return
	}

	poolID, err := strconv.ParseUint(c.Query("pool_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的地址池ID")
		return
	}

	stats, err := rh.requestService.PoolStats(uint(poolID), uint(requestID))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, stats)
}

// ReviewRequest 管理员审批申请单
func (rh *RequestHandler) ReviewRequest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的申请单ID")
		return
	}

	var req ReviewRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	if req.Approve && req.PoolID == 0 {
		response.BadRequest(c, "批准时必须选择地址池")
		return
	}

	request, err := rh.requestService.ReviewRequest(&services.ReviewInput{
		RequestID:    uint(id),
		AdminID:      middleware.CurrentUserID(c),
		Approve:      req.Approve,
		PoolID:       req.PoolID,
		AdminComment: req.AdminComment,
		ManualStart:  req.ManualStart,
		ManualEnd:    req.ManualEnd,
	})
	if err != nil {
		writeAllocationError(c, err)
		return
	}

	response.SuccessWithMessage(c, "审批完成", request)
}

// DeleteRequest 删除申请单及其名下的分配记录
func (rh *RequestHandler) DeleteRequest(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的申请单ID")
		return
	}

	if err := rh.requestService.DeleteRequest(uint(id)); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "申请单删除成功", nil)
}

// writeAllocationError 将分配失败原因映射为HTTP状态码
// 地址冲突与重复审批返回409，参数类错误返回400
func writeAllocationError(c *gin.Context, err error) {
	var conflictErr *services.ConflictError
	var capacityErr *services.InsufficientCapacityError
	var sizeErr *services.SizeMismatchError
	var rangeErr *ipaddr.InvalidRangeError

	switch {
	case errors.As(err, &conflictErr):
		response.Conflict(c, err.Error())
	case errors.As(err, &capacityErr):
		response.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidState):
		response.Conflict(c, err.Error())
	case errors.As(err, &sizeErr),
		errors.As(err, &rangeErr),
		errors.Is(err, services.ErrOutOfPoolRange):
		response.BadRequest(c, err.Error())
	default:
		response.BadRequest(c, err.Error())
	}
}
