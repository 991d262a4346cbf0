package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// 全局配置变量
var (
	globalServerConfig *ServerConfig
	configMutex        sync.RWMutex
)

// SetGlobalServerConfig 设置全局服务器配置
func SetGlobalServerConfig(config *ServerConfig) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalServerConfig = config
}

// GetGlobalServerConfig 获取全局服务器配置
func GetGlobalServerConfig() *ServerConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalServerConfig
}

// ServerConfig 服务器配置
type ServerConfig struct {
	App struct {
		Name           string        `yaml:"name"`
		Mode           string        `yaml:"mode"`
		Listen         string        `yaml:"listen"`
		ReadTimeout    time.Duration `yaml:"read_timeout"`
		WriteTimeout   time.Duration `yaml:"write_timeout"`
		IdleTimeout    time.Duration `yaml:"idle_timeout"`
		MaxHeaderBytes int           `yaml:"max_header_bytes"`
	} `yaml:"app"`

	Database struct {
		Type string `yaml:"type"`
		Path string `yaml:"path"`
	} `yaml:"database"`

	Auth struct {
		AdminUsername  string        `yaml:"admin_username"`
		AdminPassword  string        `yaml:"admin_password"`
		JWTSecret      string        `yaml:"jwt_secret"`
		RefreshSecret  string        `yaml:"refresh_secret"`
		AccessExpiry   time.Duration `yaml:"access_expiry"`
		RefreshExpiry  time.Duration `yaml:"refresh_expiry"`
		SessionTimeout time.Duration `yaml:"session_timeout"`
		LoginRateLimit int           `yaml:"login_rate_limit"`
		LoginBurst     int           `yaml:"login_burst"`
	} `yaml:"auth"`

	IPAM struct {
		MaxIPPerRequest  uint   `yaml:"max_ip_per_request"`
		MaxDurationDays  uint   `yaml:"max_duration_days"`
		DefaultDNS       string `yaml:"default_dns"`
		UtilizationAlert int    `yaml:"utilization_alert"`
	} `yaml:"ipam"`
}

// findConfigFile 智能查找配置文件
func findConfigFile(filename string) (string, error) {
	candidates := []string{
		filename,
		filepath.Join("configs", filename),
		filepath.Join("..", filename),
		filepath.Join("..", "configs", filename),
		filepath.Join("../..", "configs", filename),
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return candidate, nil
			}
			return abs, nil
		}
	}

	return "", fmt.Errorf("配置文件 %s 未找到，已搜索路径: %v", filename, candidates)
}

// LoadServerConfig 加载服务器配置
func LoadServerConfig(configPath string) (*ServerConfig, error) {
	config := &ServerConfig{}

	// 设置默认值
	config.App.Name = "IP Admin Server"
	config.App.Mode = "release"
	config.App.Listen = ":8080"
	config.App.ReadTimeout = 15 * time.Second
	config.App.WriteTimeout = 15 * time.Second
	config.App.IdleTimeout = 60 * time.Second
	config.App.MaxHeaderBytes = 1
	config.Database.Type = "sqlite"
	config.Database.Path = "data/ipadmin.db"
	config.Auth.AdminUsername = "admin"
	config.Auth.AdminPassword = "admin123"
	config.Auth.JWTSecret = "your-jwt-secret-key"
	config.Auth.RefreshSecret = "your-refresh-secret-key"
	config.Auth.AccessExpiry = 1 * time.Hour
	config.Auth.RefreshExpiry = 24 * time.Hour
	config.Auth.SessionTimeout = 24 * time.Hour
	config.Auth.LoginRateLimit = 5
	config.Auth.LoginBurst = 10
	config.IPAM.MaxIPPerRequest = 256
	config.IPAM.MaxDurationDays = 365
	config.IPAM.DefaultDNS = "8.8.8.8,8.8.4.4"
	config.IPAM.UtilizationAlert = 90

	if configPath != "" {
		actualPath, err := findConfigFile(configPath)
		if err != nil {
			return nil, err
		}

		data, err := os.ReadFile(actualPath)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret 不能为空")
	}
	if config.IPAM.MaxIPPerRequest == 0 {
		return nil, fmt.Errorf("ipam.max_ip_per_request 必须大于0")
	}

	return config, nil
}

// SaveServerConfig 保存服务器配置
func SaveServerConfig(config *ServerConfig, configPath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("保存配置文件失败: %w", err)
	}

	return nil
}
