package services

import (
	"errors"
	"fmt"

	"github.com/mir5/ipadmin/internal/server/database"
	"github.com/mir5/ipadmin/internal/server/models"
	"github.com/mir5/ipadmin/internal/shared/ipaddr"
	"github.com/mir5/ipadmin/internal/shared/utils"

	"gorm.io/gorm"
)

// PoolService 地址池管理服务
// 创建和修改时保证: 范围合法、网关在范围内、同一VLAN内启用地址池互不重叠。
// 分配器依赖这里建立的不重叠前提，运行时不再重复校验
type PoolService struct {
	db *gorm.DB
}

// NewPoolService 创建地址池管理服务
func NewPoolService() *PoolService {
	return &PoolService{
		db: database.DB,
	}
}

// PoolInput 地址池创建/更新参数
type PoolInput struct {
	VlanID      uint
	RangeStart  string
	RangeEnd    string
	SubnetMask  string
	Gateway     string
	DNSServers  string
	Description string
	IsActive    bool
}

// validatePoolInput 校验地址池参数
func (ps *PoolService) validatePoolInput(in *PoolInput, excludeID uint) error {
	var vlan models.Vlan
	if err := ps.db.First(&vlan, in.VlanID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("VLAN不存在")
		}
		return fmt.Errorf("查询VLAN失败: %w", err)
	}
	if !vlan.Status {
		return errors.New("VLAN未启用，不允许创建地址池")
	}

	poolRange, err := ipaddr.NewRange(in.RangeStart, in.RangeEnd)
	if err != nil {
		return err
	}
	if poolRange.Size() <= 1 {
		return errors.New("地址池必须包含至少2个地址")
	}

	if !utils.ValidateIP(in.SubnetMask) {
		return errors.New("子网掩码格式无效")
	}

	gateway, err := ipaddr.ParseIPv4(in.Gateway)
	if err != nil {
		return fmt.Errorf("网关地址无效: %w", err)
	}
	if !poolRange.Contains(gateway) {
		return errors.New("网关地址必须在地址池范围内")
	}

	if !utils.IsValidDNSList(in.DNSServers) {
		return errors.New("DNS服务器列表格式无效")
	}

	// 同一VLAN内启用地址池不允许重叠
	var siblings []models.IPPool
	query := ps.db.Where("vlan_id = ? AND is_active = ?", in.VlanID, true)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Find(&siblings).Error; err != nil {
		return fmt.Errorf("查询同VLAN地址池失败: %w", err)
	}
	for _, sibling := range siblings {
		siblingRange, err := sibling.Range()
		if err != nil {
			continue
		}
		if poolRange.Overlaps(siblingRange) {
			return fmt.Errorf("地址范围与地址池 %s - %s 重叠", sibling.RangeStart, sibling.RangeEnd)
		}
	}

	return nil
}

// CreatePool 创建地址池
func (ps *PoolService) CreatePool(in *PoolInput) (*models.IPPool, error) {
	if err := ps.validatePoolInput(in, 0); err != nil {
		return nil, err
	}

	pool := &models.IPPool{
		VlanID:      in.VlanID,
		RangeStart:  in.RangeStart,
		RangeEnd:    in.RangeEnd,
		SubnetMask:  in.SubnetMask,
		Gateway:     in.Gateway,
		DNSServers:  in.DNSServers,
		Description: in.Description,
		IsActive:    in.IsActive,
	}

	if err := ps.db.Create(pool).Error; err != nil {
		return nil, fmt.Errorf("创建地址池失败: %w", err)
	}

	return pool, nil
}

// UpdatePool 更新地址池
func (ps *PoolService) UpdatePool(id uint, in *PoolInput) (*models.IPPool, error) {
	var pool models.IPPool
	if err := ps.db.First(&pool, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("地址池不存在")
		}
		return nil, fmt.Errorf("查询地址池失败: %w", err)
	}

	if err := ps.validatePoolInput(in, id); err != nil {
		return nil, err
	}

	pool.VlanID = in.VlanID
	pool.RangeStart = in.RangeStart
	pool.RangeEnd = in.RangeEnd
	pool.SubnetMask = in.SubnetMask
	pool.Gateway = in.Gateway
	pool.DNSServers = in.DNSServers
	pool.Description = in.Description
	pool.IsActive = in.IsActive

	if err := ps.db.Save(&pool).Error; err != nil {
		return nil, fmt.Errorf("更新地址池失败: %w", err)
	}

	return &pool, nil
}

// GetPool 查询地址池
func (ps *PoolService) GetPool(id uint) (*models.IPPool, error) {
	var pool models.IPPool
	if err := ps.db.Preload("Vlan").First(&pool, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("地址池不存在")
		}
		return nil, fmt.Errorf("查询地址池失败: %w", err)
	}
	return &pool, nil
}

// ListPools 查询地址池列表，vlanID为0时返回全部
func (ps *PoolService) ListPools(vlanID uint) ([]models.IPPool, error) {
	query := ps.db.Preload("Vlan").Order("range_start")
	if vlanID > 0 {
		query = query.Where("vlan_id = ?", vlanID)
	}

	var pools []models.IPPool
	if err := query.Find(&pools).Error; err != nil {
		return nil, fmt.Errorf("查询地址池列表失败: %w", err)
	}
	return pools, nil
}

// ListActivePoolsByVlan 查询VLAN下的启用地址池，供审批时选择
func (ps *PoolService) ListActivePoolsByVlan(vlanID uint) ([]models.IPPool, error) {
	var pools []models.IPPool
	err := ps.db.Where("vlan_id = ? AND is_active = ?", vlanID, true).
		Order("range_start").
		Find(&pools).Error
	if err != nil {
		return nil, fmt.Errorf("查询地址池列表失败: %w", err)
	}
	return pools, nil
}

// DeletePool 删除地址池，名下存在分配记录时不允许删除
func (ps *PoolService) DeletePool(id uint) error {
	var assignedCount int64
	err := ps.db.Model(&models.AssignedIP{}).
		Joins("JOIN ip_requests ON ip_requests.id = assigned_ips.request_id").
		Where("ip_requests.selected_pool_id = ?", id).
		Count(&assignedCount).Error
	if err != nil {
		return fmt.Errorf("查询分配记录失败: %w", err)
	}
	if assignedCount > 0 {
		return fmt.Errorf("地址池名下存在 %d 条分配记录，不允许删除", assignedCount)
	}

	result := ps.db.Delete(&models.IPPool{}, id)
	if result.Error != nil {
		return fmt.Errorf("删除地址池失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("地址池不存在")
	}

	return nil
}

// PoolUsage 地址池使用情况
type PoolUsage struct {
	PoolID      uint    `json:"pool_id"`
	VlanNumber  uint    `json:"vlan_number"`
	RangeStart  string  `json:"range_start"`
	RangeEnd    string  `json:"range_end"`
	Total       uint32  `json:"total"`
	Used        uint32  `json:"used"`
	Free        uint32  `json:"free"`
	Utilization float64 `json:"utilization"`
	IsActive    bool    `json:"is_active"`
}

// Usage 统计单个地址池的使用情况，数值从台账实时推导
func (ps *PoolService) Usage(pool *models.IPPool) (*PoolUsage, error) {
	poolRange, err := pool.Range()
	if err != nil {
		return nil, fmt.Errorf("地址池范围非法: %w", err)
	}

	var used int64
	err = ps.db.Model(&models.AssignedIP{}).
		Joins("JOIN ip_requests ON ip_requests.id = assigned_ips.request_id").
		Where("ip_requests.selected_pool_id = ?", pool.ID).
		Count(&used).Error
	if err != nil {
		return nil, fmt.Errorf("统计已分配地址失败: %w", err)
	}

	usage := &PoolUsage{
		PoolID:     pool.ID,
		VlanNumber: pool.Vlan.VlanNumber,
		RangeStart: pool.RangeStart,
		RangeEnd:   pool.RangeEnd,
		Total:      poolRange.Size(),
		Used:       uint32(used),
		IsActive:   pool.IsActive,
	}
	if usage.Used < usage.Total {
		usage.Free = usage.Total - usage.Used
	}
	if usage.Total > 0 {
		usage.Utilization = float64(usage.Used) / float64(usage.Total) * 100
	}

	return usage, nil
}
