package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/mir5/ipadmin/internal/server/database"
	"github.com/mir5/ipadmin/internal/server/models"
	"github.com/mir5/ipadmin/internal/shared/ipaddr"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Uint64

// setupTestDB 打开内存数据库并迁移表结构
// 各服务在构造时捕获database.DB，必须先调用本函数再创建服务
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("迁移测试数据库失败: %v", err)
	}

	database.DB = db
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
		database.DB = nil
	})

	return db
}

// seedUser 创建测试用户
func seedUser(t *testing.T, db *gorm.DB, username string, isAdmin bool) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Password: "not-a-real-hash",
		IsAdmin:  isAdmin,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	return user
}

// seedVlan 创建测试VLAN
func seedVlan(t *testing.T, db *gorm.DB, number uint) *models.Vlan {
	t.Helper()

	vlan := &models.Vlan{
		Name:             fmt.Sprintf("测试VLAN %d", number),
		VlanNumber:       number,
		Category:         models.VlanCategoryPrivate,
		IsVisibleToUsers: true,
		Status:           true,
	}
	if err := db.Create(vlan).Error; err != nil {
		t.Fatalf("创建测试VLAN失败: %v", err)
	}
	return vlan
}

// seedPool 在VLAN下创建启用的测试地址池
func seedPool(t *testing.T, db *gorm.DB, vlanID uint, start, end string) *models.IPPool {
	t.Helper()

	pool := &models.IPPool{
		VlanID:     vlanID,
		RangeStart: start,
		RangeEnd:   end,
		SubnetMask: "255.255.255.0",
		Gateway:    start,
		IsActive:   true,
	}
	if err := db.Create(pool).Error; err != nil {
		t.Fatalf("创建测试地址池失败: %v", err)
	}
	return pool
}

// seedRequest 创建pending状态的测试申请单
func seedRequest(t *testing.T, db *gorm.DB, userID, vlanID, ipCount uint) *models.IPRequest {
	t.Helper()

	request := &models.IPRequest{
		UserID:       userID,
		VlanID:       vlanID,
		IPCount:      ipCount,
		Reason:       "测试申请",
		DurationDays: 30,
		Status:       models.RequestStatusPending,
	}
	if err := db.Create(request).Error; err != nil {
		t.Fatalf("创建测试申请单失败: %v", err)
	}
	return request
}

// newTestRequestService 组装测试用的申请单服务，指标为空指针(空实现)
func newTestRequestService() *RequestService {
	ledger := NewLedgerService()
	allocator := NewAllocatorService(ledger)
	return NewRequestService(allocator, nil)
}

// addr 解析IPv4字面量，失败即终止测试
func addr(t *testing.T, s string) uint32 {
	t.Helper()

	a, err := ipaddr.ParseIPv4(s)
	if err != nil {
		t.Fatalf("解析地址 %s 失败: %v", s, err)
	}
	return a
}

// assignedAddresses 查询申请单名下已分配地址，按写入顺序返回
func assignedAddresses(t *testing.T, db *gorm.DB, requestID uint) []string {
	t.Helper()

	var addrs []string
	err := db.Model(&models.AssignedIP{}).
		Where("request_id = ?", requestID).
		Order("id").
		Pluck("ip_address", &addrs).Error
	if err != nil {
		t.Fatalf("查询分配记录失败: %v", err)
	}
	return addrs
}

// reloadRequest 重新读取申请单
func reloadRequest(t *testing.T, db *gorm.DB, id uint) *models.IPRequest {
	t.Helper()

	var request models.IPRequest
	if err := db.First(&request, id).Error; err != nil {
		t.Fatalf("读取申请单失败: %v", err)
	}
	return &request
}
