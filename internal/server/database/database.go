package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mir5/ipadmin/internal/server/models"
	"github.com/mir5/ipadmin/internal/shared/config"
	"github.com/mir5/ipadmin/internal/shared/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDatabase 初始化数据库连接
func InitDatabase(dbPath string) error {
	return InitDatabaseWithOptions(dbPath, false)
}

// InitDatabaseWithOptions 初始化数据库连接，可选择是否强制初始化默认数据
func InitDatabaseWithOptions(dbPath string, forceInit bool) error {
	var err error

	// 确保数据库目录存在
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("创建数据库目录失败: %w", err)
	}

	// 检查是否为新数据库
	_, err = os.Stat(dbPath)
	isNewDB := os.IsNotExist(err)

	// 默认使用Silent日志级别
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 自动迁移数据库结构
	if err := models.AutoMigrate(DB); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}

	// 只有新数据库或强制初始化时才写入默认数据
	if isNewDB || forceInit {
		if forceInit {
			log.Println("强制初始化数据库...")
		} else {
			log.Println("检测到新数据库，正在初始化默认数据...")
		}

		if err := InitDefaultData(); err != nil {
			return fmt.Errorf("初始化默认数据失败: %w", err)
		}
		log.Println("默认数据初始化完成")
	}

	return nil
}

// InitDefaultData 初始化默认数据
func InitDefaultData() error {
	if err := initDefaultAdmin(); err != nil {
		return fmt.Errorf("初始化默认管理员失败: %w", err)
	}

	if err := initDemoVlan(); err != nil {
		return fmt.Errorf("初始化示例VLAN失败: %w", err)
	}

	return nil
}

// initDefaultAdmin 初始化默认管理员
func initDefaultAdmin() error {
	var count int64
	DB.Model(&models.User{}).Count(&count)

	// 如果已有用户，跳过
	if count > 0 {
		return nil
	}

	username := "admin"
	password := "admin123"
	if cfg := config.GetGlobalServerConfig(); cfg != nil {
		if cfg.Auth.AdminUsername != "" {
			username = cfg.Auth.AdminUsername
		}
		if cfg.Auth.AdminPassword != "" {
			password = cfg.Auth.AdminPassword
		}
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("密码哈希失败: %w", err)
	}

	admin := &models.User{
		Username: username,
		Password: hashedPassword,
		IsAdmin:  true,
		IsActive: true,
	}

	if err := DB.Create(admin).Error; err != nil {
		return fmt.Errorf("创建默认管理员失败: %w", err)
	}

	log.Printf("创建默认管理员: %s (密码已加密)", username)
	return nil
}

// initDemoVlan 初始化示例VLAN和地址池
func initDemoVlan() error {
	var count int64
	DB.Model(&models.Vlan{}).Count(&count)

	// 如果已有VLAN，跳过
	if count > 0 {
		return nil
	}

	vlan := &models.Vlan{
		Name:             "办公网",
		VlanNumber:       100,
		Description:      "默认办公网段",
		Category:         models.VlanCategoryPrivate,
		IsVisibleToUsers: true,
		Status:           true,
	}

	if err := DB.Create(vlan).Error; err != nil {
		return fmt.Errorf("创建示例VLAN失败: %w", err)
	}

	dns := "8.8.8.8,8.8.4.4"
	if cfg := config.GetGlobalServerConfig(); cfg != nil && cfg.IPAM.DefaultDNS != "" {
		dns = cfg.IPAM.DefaultDNS
	}

	pool := &models.IPPool{
		VlanID:      vlan.ID,
		RangeStart:  "10.10.100.10",
		RangeEnd:    "10.10.100.250",
		SubnetMask:  "255.255.255.0",
		Gateway:     "10.10.100.1",
		DNSServers:  dns,
		Description: "办公网默认地址池",
		IsActive:    true,
	}

	if err := DB.Create(pool).Error; err != nil {
		return fmt.Errorf("创建示例地址池失败: %w", err)
	}

	log.Printf("初始化示例VLAN %d 及地址池 %s - %s", vlan.VlanNumber, pool.RangeStart, pool.RangeEnd)
	return nil
}

// Close 关闭数据库连接
func Close() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
