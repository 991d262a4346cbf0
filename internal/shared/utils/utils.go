package utils

import (
	"crypto/rand"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gin-gonic/gin"
)

// HashPassword 密码加密
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword 验证密码
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateRandomString 生成随机字符串
func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	for i, b := range bytes {
		bytes[i] = charset[b%byte(len(charset))]
	}
	return string(bytes), nil
}

// ValidateIP 验证IPv4地址格式
func ValidateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.To4() != nil
}

// IsValidDNSList 验证DNS服务器列表格式 (逗号分隔)
func IsValidDNSList(dns string) bool {
	if dns == "" {
		return true
	}

	servers := strings.Split(dns, ",")
	for _, server := range servers {
		server = strings.TrimSpace(server)
		if net.ParseIP(server) == nil {
			return false
		}
	}
	return true
}

// IsValidEmail 验证邮箱格式
func IsValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
	return emailRegex.MatchString(strings.ToLower(email))
}

// IsAlphanumeric 验证字符串仅包含字母和数字
func IsAlphanumeric(s string) bool {
	matched, _ := regexp.MatchString(`^[A-Za-z0-9]+$`, s)
	return matched
}

// Sanitize 清理字符串，移除特殊字符
func Sanitize(input string) string {
	reg := regexp.MustCompile(`[<>'"&\x00-\x1f\x7f-\x9f]`)
	return reg.ReplaceAllString(input, "")
}

// TrimSpaces 去除首尾空白
func TrimSpaces(input string) string {
	return strings.TrimSpace(input)
}

// GetAbsolutePath 获取绝对路径
func GetAbsolutePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("获取工作目录失败: %w", err)
	}

	return filepath.Join(wd, path), nil
}

// ParsePagination 解析分页参数
func ParsePagination(c *gin.Context) (page, size int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}

	size, err = strconv.Atoi(c.Query("size"))
	if err != nil || size < 1 || size > 100 {
		size = 10
	}

	return page, size
}

// TimeAgo 时间差描述
func TimeAgo(t time.Time) string {
	diff := time.Since(t)

	if diff < time.Minute {
		return fmt.Sprintf("%d秒前", int(diff.Seconds()))
	} else if diff < time.Hour {
		return fmt.Sprintf("%d分钟前", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%d小时前", int(diff.Hours()))
	} else if diff < 30*24*time.Hour {
		return fmt.Sprintf("%d天前", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}
