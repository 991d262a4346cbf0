package services

import (
	"fmt"
	"log"

	"github.com/mir5/ipadmin/internal/shared/auth"
	"github.com/mir5/ipadmin/internal/shared/config"

	"github.com/robfig/cron/v3"
)

// CronScheduler 定时任务调度器
type CronScheduler struct {
	cron           *cron.Cron
	sessionManager *auth.SessionManager
	poolService    *PoolService
}

// NewCronScheduler 创建定时任务调度器
func NewCronScheduler(sessionManager *auth.SessionManager, poolService *PoolService) *CronScheduler {
	return &CronScheduler{
		cron:           cron.New(),
		sessionManager: sessionManager,
		poolService:    poolService,
	}
}

// Start 启动定时任务
func (cs *CronScheduler) Start() error {
	// 每10分钟清理过期会话
	_, err := cs.cron.AddFunc("*/10 * * * *", func() {
		if cleaned := cs.sessionManager.CleanupExpired(); cleaned > 0 {
			log.Printf("[定时清理] 清理过期会话 %d 个", cleaned)
		}
	})
	if err != nil {
		return fmt.Errorf("添加会话清理任务失败: %w", err)
	}

	// 每小时输出地址池使用率快照，超过告警阈值时提示
	_, err = cs.cron.AddFunc("0 * * * *", func() {
		if err := cs.logPoolUtilization(); err != nil {
			log.Printf("[定时巡检] 统计地址池使用率失败: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("添加地址池巡检任务失败: %w", err)
	}

	cs.cron.Start()
	log.Println("定时任务调度器已启动")
	return nil
}

// Stop 停止定时任务
func (cs *CronScheduler) Stop() {
	cs.cron.Stop()
	log.Println("定时任务调度器已停止")
}

// logPoolUtilization 输出地址池使用率快照
func (cs *CronScheduler) logPoolUtilization() error {
	pools, err := cs.poolService.ListPools(0)
	if err != nil {
		return err
	}

	alertThreshold := 90
	if cfg := config.GetGlobalServerConfig(); cfg != nil && cfg.IPAM.UtilizationAlert > 0 {
		alertThreshold = cfg.IPAM.UtilizationAlert
	}

	for i := range pools {
		usage, err := cs.poolService.Usage(&pools[i])
		if err != nil {
			continue
		}
		if usage.Utilization >= float64(alertThreshold) {
			log.Printf("[定时巡检] 地址池 %s - %s 使用率 %.1f%% 超过告警阈值 %d%%",
				usage.RangeStart, usage.RangeEnd, usage.Utilization, alertThreshold)
		} else {
			log.Printf("[定时巡检] 地址池 %s - %s 使用率 %.1f%% (%d/%d)",
				usage.RangeStart, usage.RangeEnd, usage.Utilization, usage.Used, usage.Total)
		}
	}

	return nil
}
