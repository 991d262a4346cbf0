package handlers

import (
	"strconv"

	"github.com/mir5/ipadmin/internal/server/services"
	"github.com/mir5/ipadmin/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// PoolHandler 地址池管理处理器
type PoolHandler struct {
	poolService *services.PoolService
}

// NewPoolHandler 创建地址池管理处理器
func NewPoolHandler(poolService *services.PoolService) *PoolHandler {
	return &PoolHandler{
		poolService: poolService,
	}
}

// PoolRequest 地址池创建/更新请求
type PoolRequest struct {
	VlanID      uint   `json:"vlan_id" binding:"required"`
	RangeStart  string `json:"range_start" binding:"required"`
	RangeEnd    string `json:"range_end" binding:"required"`
	SubnetMask  string `json:"subnet_mask" binding:"required"`
	Gateway     string `json:"gateway" binding:"required"`
	DNSServers  string `json:"dns_servers"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

func (r *PoolRequest) toInput() *services.PoolInput {
	return &services.PoolInput{
		VlanID:      r.VlanID,
		RangeStart:  r.RangeStart,
		RangeEnd:    r.RangeEnd,
		SubnetMask:  r.SubnetMask,
		Gateway:     r.Gateway,
		DNSServers:  r.DNSServers,
		Description: r.Description,
		IsActive:    r.IsActive,
	}
}

// ListPools 查询地址池列表，支持vlan_id过滤
func (ph *PoolHandler) ListPools(c *gin.Context) {
	var vlanID uint
	if v := c.Query("vlan_id"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			response.BadRequest(c, "无效的VLAN ID")
			return
		}
		vlanID = uint(parsed)
	}

	pools, err := ph.poolService.ListPools(vlanID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, pools)
}

// ListActivePools 查询VLAN下的启用地址池，供审批时选择
func (ph *PoolHandler) ListActivePools(c *gin.Context) {
	vlanID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的VLAN ID")
		return
	}

	pools, err := ph.poolService.ListActivePoolsByVlan(uint(vlanID))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, pools)
}

// GetPool 查询地址池详情，附带实时使用统计
func (ph *PoolHandler) GetPool(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的地址池ID")
		return
	}

	pool, err := ph.poolService.GetPool(uint(id))
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	usage, err := ph.poolService.Usage(pool)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, map[string]interface{}{
		"pool":  pool,
		"usage": usage,
	})
}

// CreatePool 创建地址池
func (ph *PoolHandler) CreatePool(c *gin.Context) {
	var req PoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	pool, err := ph.poolService.CreatePool(req.toInput())
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "地址池创建成功", pool)
}

// UpdatePool 更新地址池
func (ph *PoolHandler) UpdatePool(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的地址池ID")
		return
	}

	var req PoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误")
		return
	}

	pool, err := ph.poolService.UpdatePool(uint(id), req.toInput())
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "地址池更新成功", pool)
}

// DeletePool 删除地址池
func (ph *PoolHandler) DeletePool(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的地址池ID")
		return
	}

	if err := ph.poolService.DeletePool(uint(id)); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "地址池删除成功", nil)
}
