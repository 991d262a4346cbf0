package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mir5/ipadmin/internal/server/database"
	"github.com/mir5/ipadmin/internal/server/models"
	"github.com/mir5/ipadmin/internal/shared/config"
	"github.com/mir5/ipadmin/internal/shared/ipaddr"

	"gorm.io/gorm"
)

// RequestService 申请单生命周期服务
// 状态只在ReviewRequest中流转: pending -> approved / rejected，
// 审批通过与地址分配在同一个事务中提交，失败时申请单保持pending
type RequestService struct {
	db        *gorm.DB
	allocator *AllocatorService
	metrics   *Metrics
}

// NewRequestService 创建申请单服务
func NewRequestService(allocator *AllocatorService, metrics *Metrics) *RequestService {
	return &RequestService{
		db:        database.DB,
		allocator: allocator,
		metrics:   metrics,
	}
}

// SubmitRequestInput 提交申请参数
type SubmitRequestInput struct {
	UserID       uint
	VlanID       uint
	IPCount      uint
	Reason       string
	DurationDays uint
}

// SubmitRequest 用户提交IP申请，初始状态为pending
func (rs *RequestService) SubmitRequest(in *SubmitRequestInput) (*models.IPRequest, error) {
	if in.IPCount == 0 {
		return nil, errors.New("申请数量必须大于0")
	}
	if in.DurationDays == 0 {
		return nil, errors.New("使用期限必须大于0")
	}

	if cfg := config.GetGlobalServerConfig(); cfg != nil {
		if in.IPCount > cfg.IPAM.MaxIPPerRequest {
			return nil, fmt.Errorf("申请数量超出上限 %d", cfg.IPAM.MaxIPPerRequest)
		}
		if cfg.IPAM.MaxDurationDays > 0 && in.DurationDays > cfg.IPAM.MaxDurationDays {
			return nil, fmt.Errorf("使用期限超出上限 %d 天", cfg.IPAM.MaxDurationDays)
		}
	}

	var vlan models.Vlan
	if err := rs.db.First(&vlan, in.VlanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("VLAN不存在")
		}
		return nil, fmt.Errorf("查询VLAN失败: %w", err)
	}
	if !vlan.Status || !vlan.IsVisibleToUsers {
		return nil, errors.New("该VLAN未开放申请")
	}

	request := &models.IPRequest{
		UserID:       in.UserID,
		VlanID:       in.VlanID,
		IPCount:      in.IPCount,
		Reason:       in.Reason,
		DurationDays: in.DurationDays,
		Status:       models.RequestStatusPending,
	}

	if err := rs.db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("创建申请单失败: %w", err)
	}

	return request, nil
}

// ReviewInput 审批参数
type ReviewInput struct {
	RequestID    uint
	AdminID      uint
	Approve      bool
	PoolID       uint
	AdminComment string
	// ManualStart/ManualEnd 非空时走手动模式，由管理员显式指定地址段
	ManualStart string
	ManualEnd   string
}

// ReviewRequest 管理员审批申请单，唯一的状态流转入口
// 驳回只更新状态；批准时选择地址池并调用分配器，状态变更与分配记录
// 在同一事务中落库。分配失败时事务回滚，申请单保持pending并返回具体原因
func (rs *RequestService) ReviewRequest(in *ReviewInput) (*models.IPRequest, error) {
	var reviewed models.IPRequest
	var assignedCount int

	err := rs.db.Transaction(func(tx *gorm.DB) error {
		var request models.IPRequest
		if err := tx.First(&request, in.RequestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("申请单不存在")
			}
			return fmt.Errorf("查询申请单失败: %w", err)
		}

		if !request.IsPending() {
			return fmt.Errorf("申请单当前状态为 %s，不允许重复审批: %w", request.StatusText(), ErrInvalidState)
		}

		if !in.Approve {
			request.Status = models.RequestStatusRejected
			request.AdminComment = in.AdminComment
			if err := tx.Save(&request).Error; err != nil {
				return fmt.Errorf("更新申请单失败: %w", err)
			}
			reviewed = request
			return nil
		}

		// 批准必须选择申请VLAN下的启用地址池
		var pool models.IPPool
		if err := tx.First(&pool, in.PoolID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("地址池不存在: %w", ErrInvalidState)
			}
			return fmt.Errorf("查询地址池失败: %w", err)
		}
		if !pool.IsActive {
			return fmt.Errorf("地址池未启用: %w", ErrInvalidState)
		}
		if pool.VlanID != request.VlanID {
			return fmt.Errorf("地址池不属于申请的VLAN: %w", ErrInvalidState)
		}

		// 幂等保护: 申请单名下已有分配记录时拒绝再次分配
		var existing int64
		if err := tx.Model(&models.AssignedIP{}).Where("request_id = ?", request.ID).Count(&existing).Error; err != nil {
			return fmt.Errorf("查询分配记录失败: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("申请单已存在 %d 条分配记录: %w", existing, ErrInvalidState)
		}

		request.SelectedPoolID = &pool.ID

		var addrs []uint32
		var err error
		if in.ManualStart != "" || in.ManualEnd != "" {
			addrs, err = rs.allocator.AllocateManual(tx, &pool, &request, in.ManualStart, in.ManualEnd)
		} else {
			addrs, err = rs.allocator.AllocateAuto(tx, &pool, &request)
		}
		if err != nil {
			return err
		}

		request.Status = models.RequestStatusApproved
		request.AdminComment = in.AdminComment
		if err := tx.Save(&request).Error; err != nil {
			return fmt.Errorf("更新申请单失败: %w", err)
		}

		reviewed = request
		assignedCount = len(addrs)
		return nil
	})

	if err != nil {
		rs.metrics.ObserveAllocationError(err)
		return nil, err
	}

	if reviewed.Status == models.RequestStatusApproved {
		rs.metrics.ObserveApproval(assignedCount)
	} else {
		rs.metrics.ObserveRejection()
	}

	return &reviewed, nil
}

// PoolStatsInfo 地址池容量预览
type PoolStatsInfo struct {
	PoolID    uint   `json:"pool_id"`
	Total     uint32 `json:"total"`
	Used      uint32 `json:"used"`
	Free      uint32 `json:"free"`
	Required  uint   `json:"required"`
	Enough    bool   `json:"enough"`
	UsedFirst string `json:"used_first,omitempty"`
	UsedLast  string `json:"used_last,omitempty"`
}

// PoolStats 审批前的容量预览
// 统计值全部从台账实时推导，不做任何缓存
func (rs *RequestService) PoolStats(poolID, requestID uint) (*PoolStatsInfo, error) {
	var pool models.IPPool
	if err := rs.db.First(&pool, poolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("地址池不存在")
		}
		return nil, fmt.Errorf("查询地址池失败: %w", err)
	}

	var request models.IPRequest
	if err := rs.db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("申请单不存在")
		}
		return nil, fmt.Errorf("查询申请单失败: %w", err)
	}

	poolRange, err := pool.Range()
	if err != nil {
		return nil, fmt.Errorf("地址池范围非法: %w", err)
	}

	// 本地址池名下的已分配地址
	var addresses []string
	err = rs.db.Model(&models.AssignedIP{}).
		Joins("JOIN ip_requests ON ip_requests.id = assigned_ips.request_id").
		Where("ip_requests.selected_pool_id = ?", poolID).
		Pluck("assigned_ips.ip_address", &addresses).Error
	if err != nil {
		return nil, fmt.Errorf("查询已分配地址失败: %w", err)
	}

	var used []uint32
	for _, s := range addresses {
		addr, err := ipaddr.ParseIPv4(s)
		if err != nil {
			continue
		}
		if poolRange.Contains(addr) {
			used = append(used, addr)
		}
	}
	sort.Slice(used, func(i, j int) bool { return used[i] < used[j] })

	stats := &PoolStatsInfo{
		PoolID:   pool.ID,
		Total:    poolRange.Size(),
		Used:     uint32(len(used)),
		Required: request.IPCount,
	}
	if stats.Used < stats.Total {
		stats.Free = stats.Total - stats.Used
	}
	stats.Enough = uint(stats.Free) >= request.IPCount
	if len(used) > 0 {
		stats.UsedFirst = ipaddr.FormatIPv4(used[0])
		stats.UsedLast = ipaddr.FormatIPv4(used[len(used)-1])
	}

	return stats, nil
}

// GetRequest 查询申请单详情
func (rs *RequestService) GetRequest(id uint) (*models.IPRequest, error) {
	var request models.IPRequest
	err := rs.db.Preload("User").Preload("Vlan").Preload("SelectedPool").First(&request, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("申请单不存在")
		}
		return nil, fmt.Errorf("查询申请单失败: %w", err)
	}
	return &request, nil
}

// ListUserRequests 查询用户自己的申请单，按创建时间倒序
func (rs *RequestService) ListUserRequests(userID uint) ([]models.IPRequest, error) {
	var requests []models.IPRequest
	err := rs.db.Preload("Vlan").Preload("SelectedPool").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("查询申请单列表失败: %w", err)
	}
	return requests, nil
}

// ListRequestsByStatus 管理员按状态查询申请单
func (rs *RequestService) ListRequestsByStatus(status string, page, size int) ([]models.IPRequest, int64, error) {
	if status == "" {
		status = models.RequestStatusPending
	}

	query := rs.db.Model(&models.IPRequest{}).Where("status = ?", status)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计申请单数量失败: %w", err)
	}

	var requests []models.IPRequest
	err := query.Preload("User").Preload("Vlan").Preload("SelectedPool").
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&requests).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询申请单列表失败: %w", err)
	}

	return requests, total, nil
}

// DeleteRequest 删除申请单及其名下全部分配记录
func (rs *RequestService) DeleteRequest(id uint) error {
	return rs.db.Transaction(func(tx *gorm.DB) error {
		var request models.IPRequest
		if err := tx.First(&request, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("申请单不存在")
			}
			return fmt.Errorf("查询申请单失败: %w", err)
		}

		if err := tx.Where("request_id = ?", id).Delete(&models.AssignedIP{}).Error; err != nil {
			return fmt.Errorf("删除分配记录失败: %w", err)
		}

		if err := tx.Delete(&request).Error; err != nil {
			return fmt.Errorf("删除申请单失败: %w", err)
		}

		return nil
	})
}
