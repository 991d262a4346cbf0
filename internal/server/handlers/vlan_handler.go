package handlers

import (
	"strconv"

	"github.com/mir5/ipadmin/internal/server/services"
	"github.com/mir5/ipadmin/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// VlanHandler VLAN管理处理器
type VlanHandler struct {
	vlanService *services.VlanService
}

// NewVlanHandler 创建VLAN管理处理器
func NewVlanHandler(vlanService *services.VlanService) *VlanHandler {
	return &VlanHandler{
		vlanService: vlanService,
	}
}

// VlanRequest VLAN创建/更新请求
type VlanRequest struct {
	Name             string `json:"name" binding:"required"`
	VlanNumber       uint   `json:"vlan_number" binding:"required"`
	Description      string `json:"description"`
	Category         int    `json:"category" binding:"required"`
	VpnName          string `json:"vpn_name"`
	IsVisibleToUsers bool   `json:"is_visible_to_users"`
	Status           bool   `json:"status"`
}

func (r *VlanRequest) toInput() *services.VlanInput {
	return &services.VlanInput{
		Name:             r.Name,
		VlanNumber:       r.VlanNumber,
		Description:      r.Description,
		Category:         r.Category,
		VpnName:          r.VpnName,
		IsVisibleToUsers: r.IsVisibleToUsers,
		Status:           r.Status,
	}
}

// ListVlans 查询VLAN列表
// 管理员看到全部，普通用户只看到开放申请的VLAN
func (vh *VlanHandler) ListVlans(c *gin.Context) {
	visibleOnly := !c.GetBool("is_admin")

	vlans, err := vh.vlanService.ListVlans(visibleOnly)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, vlans)
}

// GetVlan 查询VLAN详情
func (vh *VlanHandler) GetVlan(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的VLAN ID")
		return
	}

	vlan, err := vh.vlanService.GetVlan(uint(id))
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, vlan)
}

// CreateVlan 创建VLAN
func (vh *VlanHandler) CreateVlan(c *gin.Context) {
	var req VlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	vlan, err := vh.vlanService.CreateVlan(req.toInput())
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "VLAN创建成功", vlan)
}

// UpdateVlan 更新VLAN
func (vh *VlanHandler) UpdateVlan(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的VLAN ID")
		return
	}

	var req VlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	vlan, err := vh.vlanService.UpdateVlan(uint(id), req.toInput())
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "VLAN更新成功", vlan)
}

// DeleteVlan 删除VLAN
func (vh *VlanHandler) DeleteVlan(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的VLAN ID")
		return
	}

	if err := vh.vlanService.DeleteVlan(uint(id)); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "VLAN删除成功", nil)
}
