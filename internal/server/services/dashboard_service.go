package services

import (
	"fmt"
	"time"

	"github.com/mir5/ipadmin/internal/server/database"
	"github.com/mir5/ipadmin/internal/server/models"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"gorm.io/gorm"
)

// DashboardService 仪表盘服务
type DashboardService struct {
	db          *gorm.DB
	poolService *PoolService
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(poolService *PoolService) *DashboardService {
	return &DashboardService{
		db:          database.DB,
		poolService: poolService,
	}
}

// DashboardStats 仪表盘统计数据
type DashboardStats struct {
	RequestStats RequestStatsInfo `json:"request_stats"`
	AddressStats AddressStatsInfo `json:"address_stats"`
	PoolUsages   []PoolUsage      `json:"pool_usages"`
	SystemStats  SystemStatsInfo  `json:"system_stats"`
}

// RequestStatsInfo 申请单统计
type RequestStatsInfo struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// AddressStatsInfo 地址统计
type AddressStatsInfo struct {
	Vlans       int64 `json:"vlans"`
	Pools       int64 `json:"pools"`
	ActivePools int64 `json:"active_pools"`
	Assigned    int64 `json:"assigned"`
	Monitored   int64 `json:"monitored"`
}

// SystemStatsInfo 系统运行状态
type SystemStatsInfo struct {
	Hostname    string  `json:"hostname"`
	Uptime      uint64  `json:"uptime"`
	CPUPercent  float64 `json:"cpu_percent"`
	MemUsed     uint64  `json:"mem_used"`
	MemTotal    uint64  `json:"mem_total"`
	MemPercent  float64 `json:"mem_percent"`
	DiskUsed    uint64  `json:"disk_used"`
	DiskTotal   uint64  `json:"disk_total"`
	DiskPercent float64 `json:"disk_percent"`
}

// GetStats 汇总仪表盘数据
func (ds *DashboardService) GetStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	requestStats, err := ds.requestStats()
	if err != nil {
		return nil, err
	}
	stats.RequestStats = *requestStats

	addressStats, err := ds.addressStats()
	if err != nil {
		return nil, err
	}
	stats.AddressStats = *addressStats

	usages, err := ds.poolUsages()
	if err != nil {
		return nil, err
	}
	stats.PoolUsages = usages

	// 系统状态获取失败不影响业务统计
	if sysStats, err := ds.systemStats(); err == nil {
		stats.SystemStats = *sysStats
	}

	return stats, nil
}

// requestStats 按状态统计申请单
func (ds *DashboardService) requestStats() (*RequestStatsInfo, error) {
	stats := &RequestStatsInfo{}

	if err := ds.db.Model(&models.IPRequest{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("统计申请单失败: %w", err)
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	err := ds.db.Model(&models.IPRequest{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("按状态统计申请单失败: %w", err)
	}

	for _, row := range rows {
		switch row.Status {
		case models.RequestStatusPending:
			stats.Pending = row.Count
		case models.RequestStatusApproved:
			stats.Approved = row.Count
		case models.RequestStatusRejected:
			stats.Rejected = row.Count
		}
	}

	return stats, nil
}

// addressStats 统计VLAN/地址池/分配记录数量
func (ds *DashboardService) addressStats() (*AddressStatsInfo, error) {
	stats := &AddressStatsInfo{}

	if err := ds.db.Model(&models.Vlan{}).Count(&stats.Vlans).Error; err != nil {
		return nil, fmt.Errorf("统计VLAN失败: %w", err)
	}
	if err := ds.db.Model(&models.IPPool{}).Count(&stats.Pools).Error; err != nil {
		return nil, fmt.Errorf("统计地址池失败: %w", err)
	}
	if err := ds.db.Model(&models.IPPool{}).Where("is_active = ?", true).Count(&stats.ActivePools).Error; err != nil {
		return nil, fmt.Errorf("统计启用地址池失败: %w", err)
	}
	if err := ds.db.Model(&models.AssignedIP{}).Count(&stats.Assigned).Error; err != nil {
		return nil, fmt.Errorf("统计分配记录失败: %w", err)
	}
	if err := ds.db.Model(&models.AssignedIP{}).Where("is_monitored = ?", true).Count(&stats.Monitored).Error; err != nil {
		return nil, fmt.Errorf("统计监控地址失败: %w", err)
	}

	return stats, nil
}

// poolUsages 统计全部地址池使用情况
func (ds *DashboardService) poolUsages() ([]PoolUsage, error) {
	pools, err := ds.poolService.ListPools(0)
	if err != nil {
		return nil, err
	}

	usages := make([]PoolUsage, 0, len(pools))
	for i := range pools {
		usage, err := ds.poolService.Usage(&pools[i])
		if err != nil {
			continue
		}
		usages = append(usages, *usage)
	}

	return usages, nil
}

// systemStats 获取服务器系统状态
func (ds *DashboardService) systemStats() (*SystemStatsInfo, error) {
	stats := &SystemStatsInfo{}

	if info, err := host.Info(); err == nil {
		stats.Hostname = info.Hostname
		stats.Uptime = info.Uptime
	}

	if percents, err := cpu.Percent(time.Second, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemUsed = vm.Used
		stats.MemTotal = vm.Total
		stats.MemPercent = vm.UsedPercent
	}

	if du, err := disk.Usage("/"); err == nil {
		stats.DiskUsed = du.Used
		stats.DiskTotal = du.Total
		stats.DiskPercent = du.UsedPercent
	}

	return stats, nil
}
