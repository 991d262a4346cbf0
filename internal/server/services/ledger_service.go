package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mir5/ipadmin/internal/server/database"
	"github.com/mir5/ipadmin/internal/server/models"
	"github.com/mir5/ipadmin/internal/shared/ipaddr"

	"gorm.io/gorm"
)

// LedgerService 分配台账服务
// assigned_ips表是地址占用情况的唯一事实来源，所有写入都必须经过Reserve
type LedgerService struct {
	db *gorm.DB
}

// NewLedgerService 创建分配台账服务
func NewLedgerService() *LedgerService {
	return &LedgerService{
		db: database.DB,
	}
}

// IsAssigned 查询地址是否已被分配 (全局范围，跨VLAN)
func (ls *LedgerService) IsAssigned(address string) (bool, error) {
	var count int64
	if err := ls.db.Model(&models.AssignedIP{}).Where("ip_address = ?", address).Count(&count).Error; err != nil {
		return false, fmt.Errorf("查询地址分配状态失败: %w", err)
	}
	return count > 0, nil
}

// AssignedAddressesInVlan 查询VLAN内所有已分配地址
// 范围是整个VLAN下的全部地址池，而不是单个地址池：同一VLAN内各地址池
// 互不重叠，自动分配时需要避开VLAN内所有已占用地址
func (ls *LedgerService) AssignedAddressesInVlan(tx *gorm.DB, vlanID uint) (map[uint32]struct{}, error) {
	var addresses []string
	err := tx.Model(&models.AssignedIP{}).
		Joins("JOIN ip_requests ON ip_requests.id = assigned_ips.request_id").
		Joins("JOIN ip_pools ON ip_pools.id = ip_requests.selected_pool_id").
		Where("ip_pools.vlan_id = ?", vlanID).
		Pluck("assigned_ips.ip_address", &addresses).Error
	if err != nil {
		return nil, fmt.Errorf("查询VLAN已分配地址失败: %w", err)
	}

	assigned := make(map[uint32]struct{}, len(addresses))
	for _, s := range addresses {
		addr, err := ipaddr.ParseIPv4(s)
		if err != nil {
			// 台账中不应出现非法地址
			return nil, fmt.Errorf("台账中存在非法地址 %s: %w", s, err)
		}
		assigned[addr] = struct{}{}
	}

	return assigned, nil
}

// Reserve 在事务内为申请单占用一组地址
// 提交前在同一事务中重新校验冲突，ip_address唯一索引兜底并发写入；
// 任一地址失败时整个事务回滚，不会产生部分分配
func (ls *LedgerService) Reserve(tx *gorm.DB, request *models.IPRequest, addrs []uint32, byAdmin bool) error {
	if len(addrs) == 0 {
		return fmt.Errorf("地址列表为空")
	}

	sorted := make([]uint32, len(addrs))
	copy(sorted, addrs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	// 校验申请数量上限
	var existing int64
	if err := tx.Model(&models.AssignedIP{}).Where("request_id = ?", request.ID).Count(&existing).Error; err != nil {
		return fmt.Errorf("查询申请单已分配数量失败: %w", err)
	}
	if uint(existing)+uint(len(sorted)) > request.IPCount {
		return fmt.Errorf("分配数量超出申请上限: 已有 %d 个，再分配 %d 个，上限 %d 个", existing, len(sorted), request.IPCount)
	}

	// 提交前重新校验冲突，关闭预检查与提交之间的竞争窗口
	strs := make([]string, len(sorted))
	for i, a := range sorted {
		strs[i] = ipaddr.FormatIPv4(a)
	}
	var taken []string
	if err := tx.Model(&models.AssignedIP{}).Where("ip_address IN ?", strs).Pluck("ip_address", &taken).Error; err != nil {
		return fmt.Errorf("校验地址冲突失败: %w", err)
	}
	if len(taken) > 0 {
		takenSet := make(map[string]struct{}, len(taken))
		for _, s := range taken {
			takenSet[s] = struct{}{}
		}
		// 按升序报告第一个冲突地址
		for _, s := range strs {
			if _, ok := takenSet[s]; ok {
				return &ConflictError{Address: s}
			}
		}
	}

	// 按升序逐条写入
	for _, s := range strs {
		row := models.AssignedIP{
			RequestID:       request.ID,
			UserID:          request.UserID,
			IPAddress:       s,
			AssignedByAdmin: byAdmin,
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueConstraintError(err) {
				return &ConflictError{Address: s}
			}
			return fmt.Errorf("写入分配记录失败: %w", err)
		}
	}

	return nil
}

// isUniqueConstraintError 判断是否为唯一约束冲突
func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
